package validator

import (
	"errors"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KOMKZ/go-yogan-ioc/errcode"
)

type mockValidatable struct {
	err error
}

func (m mockValidatable) Validate() error { return m.err }

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(mockValidatable{}))
}

func TestValidate_ConvertsFields(t *testing.T) {
	err := Validate(mockValidatable{err: validation.Errors{
		"scan_root": errors.New("cannot be blank"),
		"database": validation.Errors{
			"dsn": errors.New("cannot be blank"),
		},
	}})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var layered *errcode.LayeredError
	require.True(t, errors.As(err, &layered))
	fields := layered.Data()["fields"].(map[string]string)
	assert.Equal(t, "cannot be blank", fields["scan_root"])
	assert.Equal(t, "cannot be blank", fields["database.dsn"])
}

func TestValidate_OtherErrorPassesThrough(t *testing.T) {
	plain := errors.New("plain")
	assert.Same(t, plain, Validate(mockValidatable{err: plain}))
}
