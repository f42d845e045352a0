package payments

import (
	"fmt"
	"strings"
)

type Service struct {
	baseURL string
}

func NewService(baseURL string) *Service {
	return &Service{baseURL: strings.TrimRight(baseURL, "/")}
}

// PaymentURL строит ссылку на оплату брони.
// В тестовом варианте это наш же HTTP-сервер; для реального провайдера
// здесь появится создание платежа по API.
func (s *Service) PaymentURL(bookingID int64) string {
	return fmt.Sprintf("%s/payments/pay?booking=%d", s.baseURL, bookingID)
}
