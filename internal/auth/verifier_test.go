package auth

import (
	"bytes"
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/bookstore/internal/model"
	"github.com/bookhaven/bookstore/internal/utils"
)

type fakeCustomers map[string]model.Customer

func (f fakeCustomers) GetByUsername(_ context.Context, username string) (model.Customer, error) {
	c, ok := f[username]
	if !ok {
		return model.Customer{}, sql.ErrNoRows
	}
	return c, nil
}

type fakeAdmins map[string]model.Admin

func (f fakeAdmins) GetByUsername(_ context.Context, username string) (model.Admin, error) {
	a, ok := f[username]
	if !ok {
		return model.Admin{}, sql.ErrNoRows
	}
	return a, nil
}

type fakeSessions struct {
	rows        map[uint32]model.AuthedCustomer
	touched     []uint32
	invalidated []uint32
}

func (f *fakeSessions) Lookup(_ context.Context, customerID uint32) (model.AuthedCustomer, error) {
	s, ok := f.rows[customerID]
	if !ok {
		return model.AuthedCustomer{}, sql.ErrNoRows
	}
	return s, nil
}

func (f *fakeSessions) Touch(_ context.Context, customerID uint32, tokenCipher string, online bool) error {
	f.touched = append(f.touched, customerID)
	f.rows[customerID] = model.AuthedCustomer{
		CustomerID:  customerID,
		TokenCipher: tokenCipher,
		LastUsed:    time.Now().UTC(),
		IsOnline:    online,
	}
	return nil
}

func (f *fakeSessions) Invalidate(_ context.Context, customerID uint32) error {
	f.invalidated = append(f.invalidated, customerID)
	s := f.rows[customerID]
	s.IsOnline = false
	f.rows[customerID] = s
	return nil
}

const idleWindow = 30 * time.Minute

func newTestCodec(t *testing.T, validity time.Duration) *utils.TokenCodec {
	t.Helper()
	codec, err := utils.NewTokenCodec(bytes.Repeat([]byte{0xC0}, utils.KeySize), "bookhaven", validity)
	require.NoError(t, err)
	return codec
}

func newTestVerifier(t *testing.T, sessions *fakeSessions) (*Verifier, utils.TokenTriple) {
	t.Helper()
	codec := newTestCodec(t, time.Hour)
	triple, err := codec.Issue("alice")
	require.NoError(t, err)

	customers := fakeCustomers{
		"alice": {ID: 7, Username: "alice", Status: model.StatusActive},
	}
	admins := fakeAdmins{
		"staffer": {ID: 1, Username: "staffer", Role: model.RoleStaff, Status: model.StatusActive},
		"boss":    {ID: 2, Username: "boss", Role: model.RoleAdmin, Status: model.StatusActive},
		"gone":    {ID: 3, Username: "gone", Role: model.RoleAdmin, Status: model.StatusCancelled},
	}
	return NewVerifier(codec, customers, admins, sessions, idleWindow), triple
}

func onlineSession(customerID uint32, token string, lastUsed time.Time) *fakeSessions {
	return &fakeSessions{rows: map[uint32]model.AuthedCustomer{
		customerID: {CustomerID: customerID, TokenCipher: token, LastUsed: lastUsed, IsOnline: true},
	}}
}

func TestVerifyUserHappyPath(t *testing.T) {
	t.Parallel()

	sessions := &fakeSessions{rows: map[uint32]model.AuthedCustomer{}}
	v, triple := newTestVerifier(t, sessions)
	sessions.rows[7] = model.AuthedCustomer{
		CustomerID: 7, TokenCipher: triple.Token, LastUsed: time.Now().UTC(), IsOnline: true,
	}

	id, username, err := v.VerifyUser(context.Background(), triple)
	require.NoError(t, err)
	assert.Equal(t, uint32(7), id)
	assert.Equal(t, "alice", username)
	assert.Equal(t, []uint32{7}, sessions.touched)
	assert.Empty(t, sessions.invalidated)
}

func TestVerifyUserInvalidToken(t *testing.T) {
	t.Parallel()

	v, _ := newTestVerifier(t, &fakeSessions{rows: map[uint32]model.AuthedCustomer{}})
	_, _, err := v.VerifyUser(context.Background(), utils.TokenTriple{Token: "!!!", Tag: "!!!", Nonce: "!!!"})
	assert.ErrorIs(t, err, utils.ErrInvalidToken)
}

func TestVerifyUserExpiredToken(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, -time.Minute)
	triple, err := codec.Issue("alice")
	require.NoError(t, err)

	v, _ := newTestVerifier(t, &fakeSessions{rows: map[uint32]model.AuthedCustomer{}})
	_, _, err = v.VerifyUser(context.Background(), triple)
	assert.ErrorIs(t, err, utils.ErrExpired)
}

func TestVerifyUserUnknownSubject(t *testing.T) {
	t.Parallel()

	sessions := &fakeSessions{rows: map[uint32]model.AuthedCustomer{}}
	v, _ := newTestVerifier(t, sessions)

	stranger, err := newTestCodec(t, time.Hour).Issue("mallory")
	require.NoError(t, err)

	_, _, err = v.VerifyUser(context.Background(), stranger)
	assert.ErrorIs(t, err, ErrUnknownSubject)
}

func TestVerifyUserNoSession(t *testing.T) {
	t.Parallel()

	v, triple := newTestVerifier(t, &fakeSessions{rows: map[uint32]model.AuthedCustomer{}})
	_, _, err := v.VerifyUser(context.Background(), triple)
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestVerifyUserLoggedOut(t *testing.T) {
	t.Parallel()

	sessions := &fakeSessions{rows: map[uint32]model.AuthedCustomer{}}
	v, triple := newTestVerifier(t, sessions)
	sessions.rows[7] = model.AuthedCustomer{
		CustomerID: 7, TokenCipher: triple.Token, LastUsed: time.Now().UTC(), IsOnline: false,
	}

	_, _, err := v.VerifyUser(context.Background(), triple)
	assert.ErrorIs(t, err, ErrLoggedOut)
}

func TestVerifyUserSuperseded(t *testing.T) {
	t.Parallel()

	sessions := onlineSession(7, "someone-elses-ciphertext", time.Now().UTC())
	v, triple := newTestVerifier(t, sessions)

	_, _, err := v.VerifyUser(context.Background(), triple)
	assert.ErrorIs(t, err, ErrTokenSuperseded)
	assert.Empty(t, sessions.touched)
}

func TestVerifyUserIdleTimeoutInvalidates(t *testing.T) {
	t.Parallel()

	sessions := &fakeSessions{rows: map[uint32]model.AuthedCustomer{}}
	v, triple := newTestVerifier(t, sessions)
	sessions.rows[7] = model.AuthedCustomer{
		CustomerID:  7,
		TokenCipher: triple.Token,
		LastUsed:    time.Now().UTC().Add(-2 * idleWindow),
		IsOnline:    true,
	}

	_, _, err := v.VerifyUser(context.Background(), triple)
	assert.ErrorIs(t, err, ErrIdleTimeout)
	assert.Equal(t, []uint32{7}, sessions.invalidated)
	assert.False(t, sessions.rows[7].IsOnline)
	assert.Empty(t, sessions.touched)
}

func TestVerifyAdminRoleGate(t *testing.T) {
	t.Parallel()

	v, _ := newTestVerifier(t, &fakeSessions{rows: map[uint32]model.AuthedCustomer{}})
	codec := newTestCodec(t, time.Hour)

	issue := func(username string) utils.TokenTriple {
		triple, err := codec.Issue(username)
		require.NoError(t, err)
		return triple
	}

	cases := []struct {
		name     string
		username string
		min      model.Role
		wantID   uint32
		wantErr  error
	}{
		{name: "staff meets staff", username: "staffer", min: model.RoleStaff, wantID: 1},
		{name: "staff below admin", username: "staffer", min: model.RoleAdmin, wantErr: ErrPermissionDenied},
		{name: "admin meets staff", username: "boss", min: model.RoleStaff, wantID: 2},
		{name: "admin meets admin", username: "boss", min: model.RoleAdmin, wantID: 2},
		{name: "cancelled admin", username: "gone", min: model.RoleStaff, wantErr: ErrPermissionDenied},
		{name: "unknown admin", username: "nobody", min: model.RoleStaff, wantErr: ErrUnknownSubject},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			id, username, err := v.VerifyAdmin(context.Background(), issue(tc.username), tc.min)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantID, id)
			assert.Equal(t, tc.username, username)
		})
	}
}

func TestVerifyAdminRejectsCustomerStyleTampering(t *testing.T) {
	t.Parallel()

	v, _ := newTestVerifier(t, &fakeSessions{rows: map[uint32]model.AuthedCustomer{}})
	_, _, err := v.VerifyAdmin(context.Background(), utils.TokenTriple{}, model.RoleStaff)
	assert.ErrorIs(t, err, utils.ErrInvalidToken)
}
