package mail

import (
	"context"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Message 站内要发的三类邮件（联系表单转发、重置密码、确认换邮箱）共用的形状
type Message struct {
	To      string
	Subject string
	Body    string // 纯文本
}

// Sender 邮件投递是黑盒能力：成功 nil，失败原样抛错，不重试
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// SMTP go-mail 实现
type SMTP struct {
	host string
	port int
	user string
	pass string
	from string
}

func NewSMTP(host string, port int, user, pass, from string) *SMTP {
	return &SMTP{host: host, port: port, user: user, pass: pass, from: from}
}

func (s *SMTP) Send(ctx context.Context, m Message) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return err
	}
	if err := msg.To(m.To); err != nil {
		return err
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, m.Body)

	c, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.user),
		gomail.WithPassword(s.pass),
	)
	if err != nil {
		return err
	}
	return c.DialAndSendWithContext(ctx, msg)
}

// LogOnly SMTP 未配置时的兜底：只记日志，视为发送成功（开发/测试环境用）
type LogOnly struct{ Log *zap.Logger }

func (l *LogOnly) Send(_ context.Context, m Message) error {
	l.Log.Info("mail (log only)",
		zap.String("to", m.To),
		zap.String("subject", m.Subject),
		zap.Int("body_len", len(m.Body)),
	)
	return nil
}
