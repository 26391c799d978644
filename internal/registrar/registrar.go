package registrar

import (
	"context"

	"github.com/fachebot/townhall-recap/internal/kit"
	"github.com/fachebot/townhall-recap/internal/validate"
)

// SuccessMessage 订阅成功时返回给订阅者的文案
const SuccessMessage = "Success! You're on the list."

// listProvider 邮件列表服务商接口（便于测试注入 mock）
type listProvider interface {
	Subscribe(ctx context.Context, email string) error
}

// Registrar 校验邮箱并转发给外部邮件列表服务
type Registrar struct {
	provider listProvider
}

func NewRegistrar(provider *kit.Client) *Registrar {
	return &Registrar{provider: provider}
}

// Register 注册一个订阅者
//
// 邮箱校验失败时直接拒绝，不会发起任何网络调用；校验通过后
// 恰好发起一次上游调用，服务商错误由 kit 层规整为可展示信息。
func (r *Registrar) Register(ctx context.Context, rawEmail string) (string, error) {
	email, err := validate.Email(rawEmail)
	if err != nil {
		return "", err
	}

	if err := r.provider.Subscribe(ctx, email); err != nil {
		return "", err
	}

	return SuccessMessage, nil
}
