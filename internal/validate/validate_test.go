package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"普通邮箱", "alice@example.com", "alice@example.com", false},
		{"带首尾空白", "  bob@example.org  ", "bob@example.org", false},
		{"带加号和点", "a.b+tag@sub.example.co", "a.b+tag@sub.example.co", false},
		{"特殊字符本地部分", "o'neil!#$%@example.com", "o'neil!#$%@example.com", false},
		{"单标签域名", "root@localhost", "root@localhost", false},
		{"空字符串", "", "", true},
		{"纯空白", "   ", "", true},
		{"缺少@", "not-an-email", "", true},
		{"多个@", "a@b@example.com", "", true},
		{"本地部分为空", "@example.com", "", true},
		{"域名为空", "alice@", "", true},
		{"标签以连字符开头", "alice@-example.com", "", true},
		{"标签以连字符结尾", "alice@example-.com", "", true},
		{"空标签", "alice@example..com", "", true},
		{"域名带下划线", "alice@exa_mple.com", "", true},
		{"中间含空格", "ali ce@example.com", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Email(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidEmail)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranscript(t *testing.T) {
	got, err := Transcript("  Meeting covered budget and roadmap.  ")
	assert.NoError(t, err)
	assert.Equal(t, "Meeting covered budget and roadmap.", got)

	_, err = Transcript("   \n\t ")
	assert.ErrorIs(t, err, ErrEmptyTranscript)
}

func TestReference(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"https地址", "https://www.youtube.com/watch?v=abc123", false},
		{"http地址", "http://example.com/video", false},
		{"带空白", "  https://youtu.be/abc123  ", false},
		{"空字符串", "", true},
		{"非URL文本", "not a url", true},
		{"缺少协议", "www.youtube.com/watch?v=abc", true},
		{"不支持的协议", "ftp://example.com/video", true},
		{"仅协议", "https://", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reference(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidReference)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInstruction(t *testing.T) {
	got, err := Instruction(" make it one sentence ")
	assert.NoError(t, err)
	assert.Equal(t, "make it one sentence", got)

	_, err = Instruction("")
	assert.ErrorIs(t, err, ErrEmptyInstruction)
}

func TestSummary(t *testing.T) {
	got, err := Summary(" final text ")
	assert.NoError(t, err)
	assert.Equal(t, "final text", got)

	_, err = Summary("  \n ")
	assert.ErrorIs(t, err, ErrEmptySummary)
}

func TestCredential(t *testing.T) {
	got, err := Credential(" secret ")
	assert.NoError(t, err)
	assert.Equal(t, "secret", got)

	_, err = Credential("   ")
	assert.ErrorIs(t, err, ErrEmptyCredential)
}
