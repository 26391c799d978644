package validate

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// 校验失败的错误文案直接面向操作员展示，由 api 层原样返回
var (
	ErrInvalidEmail     = errors.New("Please provide a valid email address.")
	ErrEmptyTranscript  = errors.New("Paste the transcript text before summarizing.")
	ErrInvalidReference = errors.New("Please provide a valid video URL.")
	ErrEmptyInstruction = errors.New("Enter a prompt to regenerate the summary.")
	ErrEmptySummary     = errors.New("summary is required.")
	ErrEmptyCredential  = errors.New("Password cannot be empty.")
)

// emailRegex 邮箱格式：单个 @，本地部分为常见非引号字符集，
// 域名由点分隔的字母/数字/连字符标签组成，标签不能以连字符开头或结尾
var emailRegex = regexp.MustCompile(
	"^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$",
)

// Email 规整并校验邮箱地址，返回去除首尾空白后的地址
func Email(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" || !emailRegex.MatchString(email) {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// Transcript 规整手工粘贴的转写文本，空文本视为无效
func Transcript(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", ErrEmptyTranscript
	}
	return text, nil
}

// Reference 规整并校验视频地址，仅接受带主机名的 http/https URL
func Reference(raw string) (string, error) {
	locator := strings.TrimSpace(raw)
	if locator == "" {
		return "", ErrInvalidReference
	}
	u, err := url.Parse(locator)
	if err != nil {
		return "", ErrInvalidReference
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidReference
	}
	return locator, nil
}

// Instruction 规整重新生成指令，空指令视为无效
func Instruction(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", ErrEmptyInstruction
	}
	return text, nil
}

// Summary 规整待发送的摘要文本，空文本视为无效
func Summary(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", ErrEmptySummary
	}
	return text, nil
}

// Credential 规整操作员口令，空口令视为无效
func Credential(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", ErrEmptyCredential
	}
	return text, nil
}
