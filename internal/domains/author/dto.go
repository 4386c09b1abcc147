package author

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Constants for validation
const (
	MaxNameLength = 255
)

// EditAuthorRequest - editAuthor(name, setBornTo)
type EditAuthorRequest struct {
	Name      string `json:"name"`
	SetBornTo int    `json:"setBornTo"`
}

func (r EditAuthorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required.Error("name is required"),
			validation.Length(1, MaxNameLength),
		),
	)
}
