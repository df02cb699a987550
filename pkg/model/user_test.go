package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/unkani/unkani/pkg/security"
)

func init() {
	security.BcryptCost = bcrypt.MinCost
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newSigner(t *testing.T) (*security.Signer, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	signer, err := security.NewSigner("test-secret")
	require.NoError(t, err)
	return signer.WithClock(clock.Now), clock
}

func TestUser_PasswordSalting(t *testing.T) {
	u1 := &User{ID: 1}
	u2 := &User{ID: 2}
	require.NoError(t, u1.SetPassword("cat"))
	require.NoError(t, u2.SetPassword("cat"))

	assert.NotEqual(t, u1.PasswordHash, u2.PasswordHash)
	assert.True(t, u1.VerifyPassword("cat"))
	assert.False(t, u1.VerifyPassword("dog"))
}

func TestUser_LastPassword(t *testing.T) {
	u := &User{ID: 1}
	require.NoError(t, u.SetPassword("first"))
	assert.False(t, u.VerifyLastPassword("first"))

	require.NoError(t, u.SetPassword("second"))
	assert.True(t, u.VerifyPassword("second"))
	assert.True(t, u.VerifyLastPassword("first"))
	assert.False(t, u.VerifyPassword("first"))
}

func TestUser_NoPasswordNeverVerifies(t *testing.T) {
	u := &User{}
	assert.False(t, u.VerifyPassword(""))
	assert.False(t, u.VerifyLastPassword(""))
}

func TestUser_Confirm(t *testing.T) {
	signer, clock := newSigner(t)
	alice := &User{ID: 1}
	bob := &User{ID: 2}

	token, err := alice.GenerateConfirmationToken(signer, 0)
	require.NoError(t, err)

	assert.False(t, bob.Confirm(signer, token))
	assert.False(t, bob.Confirmed)

	assert.True(t, alice.Confirm(signer, token))
	assert.True(t, alice.Confirmed)

	short, err := bob.GenerateConfirmationToken(signer, time.Second)
	require.NoError(t, err)
	clock.t = clock.t.Add(2 * time.Second)
	assert.False(t, bob.Confirm(signer, short))
}

func TestUser_ResetPassword(t *testing.T) {
	signer, clock := newSigner(t)
	alice := &User{ID: 1}
	bob := &User{ID: 2}
	require.NoError(t, alice.SetPassword("cat"))
	require.NoError(t, bob.SetPassword("cat"))

	token, err := alice.GenerateResetToken(signer, 0)
	require.NoError(t, err)

	assert.False(t, bob.ResetPassword(signer, token, "horse"))
	assert.True(t, bob.VerifyPassword("cat"))

	assert.False(t, alice.ResetPassword(signer, "", "horse"))

	assert.True(t, alice.ResetPassword(signer, token, "dog"))
	assert.True(t, alice.VerifyPassword("dog"))
	assert.True(t, alice.VerifyLastPassword("cat"))

	short, err := bob.GenerateResetToken(signer, time.Second)
	require.NoError(t, err)
	clock.t = clock.t.Add(2 * time.Second)
	assert.False(t, bob.ResetPassword(signer, short, "horse"))
	assert.True(t, bob.VerifyPassword("cat"))
}

func TestUser_ResetTokenIsNotAConfirmationToken(t *testing.T) {
	signer, _ := newSigner(t)
	u := &User{ID: 1}
	token, err := u.GenerateResetToken(signer, 0)
	require.NoError(t, err)
	assert.False(t, u.Confirm(signer, token))
}

func TestUser_ChangeEmail(t *testing.T) {
	signer, _ := newSigner(t)
	u := &User{ID: 1}
	u.SetEmail("old@example.com")

	token, err := u.GenerateEmailChangeToken(signer, "new@example.com", 0)
	require.NoError(t, err)

	other := &User{ID: 2}
	assert.False(t, other.ChangeEmail(signer, token))

	assert.True(t, u.ChangeEmail(signer, token))
	require.NotNil(t, u.Email())
	assert.Equal(t, "new@example.com", u.Email().Email)
	require.Len(t, u.EmailAddresses, 2)
	assert.False(t, u.EmailAddresses[0].Active)
	assert.False(t, u.EmailAddresses[0].Primary)
}

func TestUser_Email(t *testing.T) {
	u := &User{}
	assert.Nil(t, u.Email())

	u.EmailAddresses = []EmailAddress{
		{Email: "inactive@example.com", Primary: true, Active: false},
		{Email: "secondary@example.com", Primary: false, Active: true},
		{Email: "primary@example.com", Primary: true, Active: true},
	}
	require.NotNil(t, u.Email())
	assert.Equal(t, "primary@example.com", u.Email().Email)
}

func TestUser_SetEmailExisting(t *testing.T) {
	u := &User{}
	u.SetEmail("a@example.com")
	u.SetEmail("b@example.com")
	u.SetEmail("a@example.com")

	require.Len(t, u.EmailAddresses, 2)
	assert.Equal(t, "a@example.com", u.Email().Email)
	assert.False(t, u.EmailAddresses[1].Primary)
}

func TestUser_PhoneNumber(t *testing.T) {
	u := &User{}
	assert.Nil(t, u.PhoneNumber())

	u.SetPhoneNumber("555-0100", PhoneTypeMobile)
	u.SetPhoneNumber("555-0199", PhoneTypeWork)

	phone := u.PhoneNumber()
	require.NotNil(t, phone)
	assert.Equal(t, "555-0199", phone.Number)
	assert.Equal(t, "WORK", phone.Type.String())
	assert.False(t, u.PhoneNumbers[0].Primary)
}

func TestUser_Address(t *testing.T) {
	u := &User{
		Addresses: []Address{
			{Address1: "1 Main St", City: "Springfield", Primary: true, Active: true},
		},
	}
	addr := u.Address()
	require.NotNil(t, addr)
	assert.Equal(t, "1 Main St", addr.Address1)

	u.Addresses[0].Primary = false
	assert.Nil(t, u.Address())
}

func TestUser_URL(t *testing.T) {
	u := &User{ID: 42}
	assert.Equal(t, "http://localhost:5000/api/v1/users/42", u.URL("http://localhost:5000"))
	assert.Equal(t, "https://unkani.example/api/v1/users/42", u.URL("https://unkani.example/"))
}

func TestUser_Permissions(t *testing.T) {
	roles := DefaultRoles()

	u := &User{}
	assert.False(t, u.Can(PermissionViewFHIR))

	u.Role = &roles[0]
	assert.True(t, u.Can(PermissionViewFHIR))
	assert.False(t, u.Can(PermissionEditFHIR))
	assert.False(t, u.IsAdministrator())

	u.Role = &roles[2]
	assert.True(t, u.IsAdministrator())
	assert.True(t, u.Can(PermissionViewFHIR|PermissionAdminUsers))
}

func TestUser_TokenValid(t *testing.T) {
	now := time.Now()
	hash := "abc"
	future := now.Add(time.Minute)
	past := now.Add(-time.Second)

	assert.False(t, (&User{}).TokenValid(now))
	assert.True(t, (&User{TokenHash: &hash, TokenExpiration: &future}).TokenValid(now))
	assert.False(t, (&User{TokenHash: &hash, TokenExpiration: &past}).TokenValid(now))
}

func TestUser_FullNameAndGroups(t *testing.T) {
	u := &User{FirstName: "Ada", LastName: "Lovelace", AppGroups: DefaultAppGroups()[:2]}
	assert.Equal(t, "Ada Lovelace", u.FullName())
	assert.Equal(t, []string{"Unkani", "Demo"}, u.AppGroupNames())
}

func TestDefaults_SingleDefault(t *testing.T) {
	count := 0
	for _, r := range DefaultRoles() {
		if r.Default {
			count++
			assert.Equal(t, RoleUser, r.Name)
		}
	}
	assert.Equal(t, 1, count)

	count = 0
	for _, g := range DefaultAppGroups() {
		if g.Default {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestPhoneType(t *testing.T) {
	pt, err := PhoneTypeString("mobile")
	require.NoError(t, err)
	assert.Equal(t, PhoneTypeMobile, pt)

	_, err = PhoneTypeString("pager")
	assert.Error(t, err)

	v, err := PhoneTypeFax.Value()
	require.NoError(t, err)
	assert.Equal(t, "FAX", v)

	var scanned PhoneType
	require.NoError(t, scanned.Scan([]byte("HOME")))
	assert.Equal(t, PhoneTypeHome, scanned)
}
