package author

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditAuthorRequest_Validate(t *testing.T) {
	for _, born := range []int{-5000, 0, 1952, 12000} {
		assert.NoError(t, EditAuthorRequest{Name: "Robert Martin", SetBornTo: born}.Validate(), "born %d", born)
	}

	assert.Error(t, EditAuthorRequest{Name: "", SetBornTo: 1952}.Validate())
	assert.Error(t, EditAuthorRequest{Name: strings.Repeat("x", MaxNameLength+1), SetBornTo: 1952}.Validate())
}
