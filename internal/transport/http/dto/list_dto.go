package dto

type ListResponse[T any] struct {
	Items []T `json:"items"`
}

func List[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items}
}
