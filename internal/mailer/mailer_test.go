package mailer

import (
	"context"
	"errors"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"

	"github.com/GoSim-25-26J-441/taskroom-backend/config"
)

type capturedMail struct {
	from    []string
	to      []string
	subject []string
	body    string
}

func newTestMailer(t *testing.T, sendErr error) (*SMTPMailer, *capturedMail) {
	t.Helper()
	got := &capturedMail{}
	m := NewSMTPMailer(config.MailConfig{
		Host: "smtp.example.com",
		Port: 2525,
		User: "mailer",
		From: "TaskRoom <accounts@taskroom.local>",
	}, "https://app.example.com")
	m.send = func(_ context.Context, msg *gomail.Msg) error {
		got.from = msg.GetFromString()
		got.to = msg.GetToString()
		got.subject = msg.GetGenHeader(gomail.HeaderSubject)
		parts := msg.GetParts()
		require.Len(t, parts, 1)
		content, err := parts[0].GetContent()
		require.NoError(t, err)
		got.body = string(content)
		return sendErr
	}
	return m, got
}

func TestSMTPMailer_SendConfirmation(t *testing.T) {
	m, got := newTestMailer(t, nil)

	err := m.SendConfirmation(context.Background(), Message{To: "ana@example.com", Name: "Ana", Token: "tok123"})
	require.NoError(t, err)

	require.Len(t, got.from, 1)
	assert.Contains(t, got.from[0], "accounts@taskroom.local")
	require.Len(t, got.to, 1)
	assert.Contains(t, got.to[0], "ana@example.com")
	assert.Equal(t, []string{"TaskRoom - Confirm your account"}, got.subject)
	assert.Contains(t, got.body, "https://app.example.com/confirm/tok123")
	assert.Contains(t, got.body, "Hi Ana")
}

func TestSMTPMailer_SendPasswordReset(t *testing.T) {
	m, got := newTestMailer(t, nil)

	err := m.SendPasswordReset(context.Background(), Message{To: "ana@example.com", Name: "Ana", Token: "tok456"})
	require.NoError(t, err)
	assert.Contains(t, got.body, "https://app.example.com/forgot-password/tok456")
}

func TestSMTPMailer_Errors(t *testing.T) {
	m, _ := newTestMailer(t, errors.New("relay denied"))

	err := m.SendConfirmation(context.Background(), Message{To: "ana@example.com", Name: "Ana", Token: "t"})
	assert.ErrorContains(t, err, "relay denied")

	err = m.SendConfirmation(context.Background(), Message{To: "not an address", Token: "t"})
	assert.ErrorContains(t, err, "parse recipient")
}

func TestSMTPMailer_StalledServerHonorsDeadline(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	// Accept and never greet.
	held := make(chan net.Conn, 8)
	t.Cleanup(func() {
		ln.Close()
		for {
			select {
			case conn := <-held:
				conn.Close()
			default:
				return
			}
		}
	})
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			select {
			case held <- conn:
			default:
				conn.Close()
			}
		}
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	m := NewSMTPMailer(config.MailConfig{
		Host: host,
		Port: port,
		From: "TaskRoom <accounts@taskroom.local>",
	}, "https://app.example.com")

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	start := time.Now()
	go func() {
		done <- m.SendConfirmation(ctx, Message{To: "ana@example.com", Name: "Ana", Token: "t"})
	}()

	select {
	case err := <-done:
		assert.Error(t, err)
		assert.Less(t, time.Since(start), 3*time.Second)
	case <-time.After(5 * time.Second):
		t.Fatal("send still blocked after the context deadline")
	}
}

func TestNewSMTPMailer_DefaultsTimeout(t *testing.T) {
	m := NewSMTPMailer(config.MailConfig{Host: "smtp.example.com", Port: 25}, "")
	assert.Equal(t, defaultSendTimeout, m.cfg.Timeout)
}

func TestNew_FallsBackToLogMailer(t *testing.T) {
	m := New(config.MailConfig{}, "http://localhost")
	_, ok := m.(*LogMailer)
	assert.True(t, ok)
	assert.NoError(t, m.SendConfirmation(context.Background(), Message{To: "a@b.c", Token: "t"}))
}
