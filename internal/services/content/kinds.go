package content

import (
	"github.com/zilaportal/portal/internal/domain/enums"
	"github.com/zilaportal/portal/internal/domain/model"
)

// KindSpec binds a submittable kind to its payload type and the query
// parameter used to filter it by category.
type KindSpec struct {
	Kind          enums.SubmittableKind
	CategoryParam string
	NewPayload    func() model.Payload
}

var kindSpecs = map[enums.SubmittableKind]KindSpec{
	enums.KindHospital: {
		Kind:          enums.KindHospital,
		CategoryParam: "type",
		NewPayload:    func() model.Payload { return &model.Hospital{} },
	},
	enums.KindHomeTutor: {
		Kind:       enums.KindHomeTutor,
		NewPayload: func() model.Payload { return &model.Tutor{} },
	},
	enums.KindToLet: {
		Kind:          enums.KindToLet,
		CategoryParam: "propertyType",
		NewPayload:    func() model.Payload { return &model.ToLet{} },
	},
	enums.KindBusiness: {
		Kind:          enums.KindBusiness,
		CategoryParam: "businessType",
		NewPayload:    func() model.Payload { return &model.Business{} },
	},
	enums.KindTouristPlace: {
		Kind:          enums.KindTouristPlace,
		CategoryParam: "placeType",
		NewPayload:    func() model.Payload { return &model.TouristPlace{} },
	},
	enums.KindBlog: {
		Kind:       enums.KindBlog,
		NewPayload: func() model.Payload { return &model.Blog{} },
	},
}

func Spec(kind enums.SubmittableKind) (KindSpec, bool) {
	spec, ok := kindSpecs[kind]
	return spec, ok
}

func Specs() []KindSpec {
	out := make([]KindSpec, 0, len(kindSpecs))
	for _, kind := range enums.AllKinds() {
		out = append(out, kindSpecs[kind])
	}
	return out
}
