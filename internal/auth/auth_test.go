package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordBus struct {
	events []any
}

func (b *recordBus) Publish(e any) { b.events = append(b.events, e) }

func TestSignIn(t *testing.T) {
	bus := &recordBus{}
	svc := NewService(bus)

	id, err := svc.SignIn("  Jane.Doe@Gmail.com ", "whatever")
	require.NoError(t, err)
	assert.Equal(t, "jane.doe@gmail.com", id.Email)
	assert.Equal(t, "jane.doe", id.Name, "name derives from the local part")

	current, ok := svc.Current()
	assert.True(t, ok)
	assert.Equal(t, id, current)

	require.Len(t, bus.events, 1)
	assert.Equal(t, SignedInEvent{Identity: id}, bus.events[0])
}

func TestSignIn_RejectsOtherDomains(t *testing.T) {
	svc := NewService(&recordBus{})

	tests := []string{
		"jane@example.com",
		"jane@gmail.com.evil.org",
		"@gmail.com",
		"",
	}
	for _, email := range tests {
		_, err := svc.SignIn(email, "pw")
		assert.ErrorIs(t, err, ErrInvalidCredentialFormat, "email %q", email)
	}

	_, ok := svc.Current()
	assert.False(t, ok, "failed attempts leave no identity")
}

func TestSignUp(t *testing.T) {
	bus := &recordBus{}
	svc := NewService(bus)

	id, err := svc.SignUp(" Jane Doe ", "jane@gmail.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", id.Name)
	assert.Equal(t, "jane@gmail.com", id.Email)
}

func TestSignOut(t *testing.T) {
	bus := &recordBus{}
	svc := NewService(bus)

	_, err := svc.SignIn("jane@gmail.com", "pw")
	require.NoError(t, err)

	svc.SignOut()
	_, ok := svc.Current()
	assert.False(t, ok)
	require.Len(t, bus.events, 2)
	assert.Equal(t, SignedOutEvent{}, bus.events[1])

	// Signing out while signed out publishes nothing.
	svc.SignOut()
	assert.Len(t, bus.events, 2)
}
