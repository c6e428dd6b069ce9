package api

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		body   string
		kind   Kind
		detail string
	}{
		{401, `{"detail":"Invalid Groq API key"}`, KindAuthRejected, "Invalid Groq API key"},
		{403, ``, KindAuthRejected, ""},
		{404, `{"detail":"Not Found"}`, KindBackendError, "Not Found"},
		{422, `{"detail":[{"loc":["body","file"],"msg":"field required"},{"msg":"bad model"}]}`, KindBackendError, "field required; bad model"},
		{500, `internal error`, KindBackendError, ""},
		{502, `{"detail":{"nested":true}}`, KindBackendError, ""},
		{503, `{"detail":"Upstream failed:\n  model overloaded\r\n\tretry later"}`, KindBackendError, "Upstream failed: model overloaded retry later"},
		{400, `{"detail":[{"msg":"first\nline"},{"msg":"  "}]}`, KindBackendError, "first line"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.status), func(t *testing.T) {
			e := ClassifyStatus(tt.status, []byte(tt.body))
			if assert.NotNil(t, e) {
				assert.Equal(t, tt.kind, e.Kind)
				assert.Equal(t, tt.detail, e.Detail)
				assert.Equal(t, tt.status, e.StatusCode)
			}
		})
	}

	assert.Nil(t, ClassifyStatus(200, nil))
	assert.Nil(t, ClassifyStatus(204, nil))
}

func TestMessageFallbacks(t *testing.T) {
	assert.Equal(t, MsgAuthRejected, Message(&Error{Kind: KindAuthRejected, StatusCode: 401}))
	assert.Equal(t, MsgNetworkFailure, Message(NetworkFailure(errors.New("connection refused"))))
	assert.Equal(t, MsgBackendError, Message(&Error{Kind: KindBackendError, StatusCode: 500}))
	assert.Equal(t, "Please upload an audio file.", Message(InvalidInput("Please upload an audio file.")))
	assert.Equal(t, MsgBackendError, Message(errors.New("plain")))
	assert.Empty(t, Message(nil))
}

func TestKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("transcribe: %w", NetworkFailure(errors.New("dial tcp: refused")))

	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, KindNetworkFailure, kind)
	assert.True(t, IsKind(err, KindNetworkFailure))
	assert.False(t, IsKind(err, KindBackendError))

	_, ok = KindOf(errors.New("other"))
	assert.False(t, ok)
}

func TestErrorString(t *testing.T) {
	e := &Error{Kind: KindBackendError, StatusCode: 500, Detail: "boom"}
	assert.Equal(t, "api: backend_error (HTTP 500): boom", e.Error())
	assert.Equal(t, "stale_response", Stale("transcribe").Kind.String())
}
