package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/signin/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAccount() *Account {
	a := NewAccount("ada@example.com", "Ada", "Lovelace")
	a.Title = "Analyst"
	a.Phone = "(555) 123-4567"
	return a
}

func TestNewAccount_Defaults(t *testing.T) {
	a := NewAccount("ada@example.com", "Ada", "Lovelace")

	assert.True(t, a.IsActive)
	assert.False(t, a.IsStaff)
	assert.False(t, a.IsSuperuser)
	assert.Empty(t, a.PasswordHash)
}

func TestAccount_Names(t *testing.T) {
	a := validAccount()
	assert.Equal(t, "Ada Lovelace", a.FullName())
	assert.Equal(t, "Ada", a.ShortName())
	assert.Equal(t, "ada@example.com", a.String())

	a.LastName = ""
	assert.Equal(t, "Ada", a.FullName())
}

func TestAccount_Passwords(t *testing.T) {
	a := validAccount()
	require.NoError(t, a.SetPassword("s3cret"))

	assert.NotEqual(t, "s3cret", a.PasswordHash)
	assert.True(t, a.HasUsablePassword())
	assert.True(t, a.CheckPassword("s3cret"))
	assert.False(t, a.CheckPassword("S3cret"))

	a.SetUnusablePassword()
	assert.False(t, a.HasUsablePassword())
	assert.False(t, a.CheckPassword("s3cret"))
}

func TestAccount_ConsoleCapability(t *testing.T) {
	tests := []struct {
		name   string
		staff  bool
		active bool
		want   bool
	}{
		{"active staff", true, true, true},
		{"inactive staff", true, false, false},
		{"active regular", false, true, false},
		{"inactive regular", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validAccount()
			a.IsStaff = tt.staff
			a.IsActive = tt.active

			var p Principal = a
			assert.Equal(t, tt.staff, p.IsStaffMember())
			assert.Equal(t, tt.active, p.IsActiveMember())
			assert.Equal(t, tt.want, p.CanAccessConsole())
		})
	}
}

func TestValidatePhone(t *testing.T) {
	assert.NoError(t, ValidatePhone("(555) 123-4567"))
	assert.NoError(t, ValidatePhone(""))
	assert.ErrorIs(t, ValidatePhone("5551234567"), common.ErrInvalidPhone)
	assert.ErrorIs(t, ValidatePhone("555 123-4567"), common.ErrInvalidPhone)
	assert.ErrorIs(t, ValidatePhone("(555) 123-45678"), common.ErrInvalidPhone)
}

func TestAccount_Validate(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(a *Account)
		wantFields []string
		wantErr    error
	}{
		{name: "valid", mutate: func(a *Account) {}},
		{name: "empty optional fields", mutate: func(a *Account) { a.Title, a.Phone = "", "" }},
		{
			name:       "missing first name",
			mutate:     func(a *Account) { a.FirstName = "" },
			wantFields: []string{FieldFirstName},
			wantErr:    common.ErrMissingField,
		},
		{
			name:       "missing everything required",
			mutate:     func(a *Account) { a.Email, a.FirstName, a.LastName = "", " ", "" },
			wantFields: []string{FieldEmail, FieldFirstName, FieldLastName},
			wantErr:    common.ErrMissingField,
		},
		{
			name:       "bad phone",
			mutate:     func(a *Account) { a.Phone = "5551234567" },
			wantFields: []string{FieldPhone},
			wantErr:    common.ErrInvalidPhone,
		},
		{
			name:       "bad email",
			mutate:     func(a *Account) { a.Email = "not-an-email" },
			wantFields: []string{FieldEmail},
			wantErr:    common.ErrInvalidField,
		},
		{
			name:       "name too long",
			mutate:     func(a *Account) { a.LastName = strings.Repeat("x", MaxNameLength+1) },
			wantFields: []string{FieldLastName},
			wantErr:    common.ErrInvalidField,
		},
		{
			name:       "title too long",
			mutate:     func(a *Account) { a.Title = strings.Repeat("t", MaxTitleLength+1) },
			wantFields: []string{FieldTitle},
			wantErr:    common.ErrInvalidField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validAccount()
			tt.mutate(a)

			err := a.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			fe, ok := AsFieldErrors(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantFields, fe.Fields())
		})
	}
}

func TestFieldErrors_ByField(t *testing.T) {
	var fe FieldErrors
	assert.NoError(t, fe.Err())

	fe.Add(FieldEmail, common.ErrDuplicateEmail, "This email has already been taken.")
	fe.Add(FieldPhone, common.ErrInvalidPhone, PhoneFormatMessage)

	m := fe.ByField()
	assert.Equal(t, []string{"This email has already been taken."}, m[FieldEmail])
	assert.Equal(t, []string{PhoneFormatMessage}, m[FieldPhone])
	assert.ErrorIs(t, fe.Err(), common.ErrDuplicateEmail)
	assert.Contains(t, fe.Error(), "email: This email has already been taken.")
}
