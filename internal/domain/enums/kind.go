package enums

// SubmittableKind names a content family subject to the PENDING/APPROVED/REJECTED
// lifecycle. The value doubles as the REST collection path.
type SubmittableKind string

const (
	KindHospital     SubmittableKind = "hospitals"
	KindHomeTutor    SubmittableKind = "home-tutors"
	KindToLet        SubmittableKind = "to-lets"
	KindBusiness     SubmittableKind = "businesses"
	KindTouristPlace SubmittableKind = "tourist-places"
	KindBlog         SubmittableKind = "blogs"
)

var kinds = []SubmittableKind{
	KindHospital,
	KindHomeTutor,
	KindToLet,
	KindBusiness,
	KindTouristPlace,
	KindBlog,
}

func AllKinds() []SubmittableKind {
	out := make([]SubmittableKind, len(kinds))
	copy(out, kinds)
	return out
}

func (k SubmittableKind) Valid() bool {
	for _, known := range kinds {
		if k == known {
			return true
		}
	}
	return false
}

func (k SubmittableKind) Path() string {
	return "/" + string(k)
}
