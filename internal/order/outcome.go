package order

import (
	"errors"

	"printcalc/pkg/api"
)

const (
	MessageSent          = "Заявка отправлена! Мы свяжемся с вами в ближайшее время."
	MessageSendFailed    = "Ошибка отправки заявки. Попробуйте ещё раз или позвоните нам."
	MessageConnectFailed = "Ошибка соединения. Проверьте интернет и попробуйте ещё раз."
)

// Outcome is what the visitor is told after pressing "send".
type Outcome struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// OutcomeOf maps the result of api.Client.SubmitOrder to a user message.
// Endpoint errors show the endpoint's own text when it sent one.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return Outcome{OK: true, Message: MessageSent}
	}

	var submitErr *api.SubmitError
	if errors.As(err, &submitErr) {
		if submitErr.Message != "" {
			return Outcome{Message: "Ошибка: " + submitErr.Message}
		}
		return Outcome{Message: MessageSendFailed}
	}

	return Outcome{Message: MessageConnectFailed}
}
