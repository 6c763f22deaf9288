package kafka

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessageBuilder(t *testing.T) {
	msg := NewMessage().
		WithKey("+919812345678").
		WithValue(map[string]string{"code": "123456"}).
		WithEventType("otp.requested").
		WithSource("gatepass-api").
		WithCorrelationID("req-1").
		Build()

	require.Equal(t, "+919812345678", msg.Key)
	require.JSONEq(t, `{"code":"123456"}`, string(msg.Value))
	require.Equal(t, "otp.requested", msg.GetEventType())
	require.Equal(t, "req-1", msg.GetCorrelationID())
	require.NotEmpty(t, msg.GetEventID())
	require.NotEmpty(t, msg.Headers[HeaderTimestamp])

	var decoded map[string]string
	require.NoError(t, msg.DecodeValue(&decoded))
	require.Equal(t, "123456", decoded["code"])
}

func TestMessageBuilder_ValueError(t *testing.T) {
	b := NewMessage().WithKey("k").WithValue(make(chan int))
	require.Error(t, b.Err())
	require.Empty(t, b.Build().Value)
}

func TestRetryCount(t *testing.T) {
	msg := Message{}
	require.Equal(t, 0, msg.GetRetryCount())

	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	require.Equal(t, 12, msg.GetRetryCount())
	require.Equal(t, "12", msg.Headers[HeaderRetryCount])
}
