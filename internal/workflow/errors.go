package workflow

import "errors"

var (
	// ErrUnauthorized 操作员口令不匹配
	ErrUnauthorized = errors.New("Unauthorized")
	// ErrBusy 已有外部调用在途，单写者约束拒绝并发操作
	ErrBusy = errors.New("Another operation is already in progress.")
	// ErrNoActiveSession 没有可改写或可发送的活动摘要
	ErrNoActiveSession = errors.New("No active summary.")
	// ErrMissingSource 既没有视频地址也没有手工转写文本
	ErrMissingSource = errors.New("Provide a video URL or a manual transcript.")
	// ErrEmptyTranscript 转写来源解析结果为空白文本
	ErrEmptyTranscript = errors.New("The video produced an empty transcript.")
)
