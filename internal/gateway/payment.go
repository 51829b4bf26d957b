package gateway

import (
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/gig-backend/internal/models"
)

// PaymentGateway — слушатель расчётных событий. Движок жизненного цикла
// не двигает деньги сам: он лишь сообщает платёжному бэкенду, что эскроу
// высвобожден исполнителю либо возвращён заказчику.
type PaymentGateway struct {
	log *logrus.Entry
}

func NewPaymentGateway() *PaymentGateway {
	return &PaymentGateway{log: logrus.WithField("component", "payment_gateway")}
}

// HandleEscrowEvent обрабатывает событие расчёта эскроу.
func (g *PaymentGateway) HandleEscrowEvent(event string, payload any) {
	escrow, ok := payload.(models.EscrowEvent)
	if !ok {
		g.log.WithField("event", event).Warn("Неожиданная полезная нагрузка события эскроу")
		return
	}

	switch event {
	case models.EventEscrowReleased:
		g.log.WithFields(logrus.Fields{
			"gig_id": escrow.GigID,
			"amount": escrow.Amount,
		}).Info("Выплата исполнителю: эскроу высвобожден")
	case models.EventEscrowRefunded:
		g.log.WithFields(logrus.Fields{
			"gig_id": escrow.GigID,
			"amount": escrow.Amount,
		}).Info("Возврат заказчику: эскроу возвращён")
	default:
		g.log.WithField("event", event).Warn("Нерасчётное событие в платёжном шлюзе")
	}
}
