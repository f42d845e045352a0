package dialog

type State string

const (
	StateIdle State = "idle"

	// Регистрация
	StateAwaitFIO   State = "await_fio"
	StateAwaitPhone State = "await_phone"
	StateAwaitEmail State = "await_email"

	// Бронирование
	StateBookTariff   State = "book_tariff"   // выбор тарифа
	StateBookDate     State = "book_date"     // ввод даты визита
	StateBookTime     State = "book_time"     // ввод времени (только переговорная)
	StateBookDuration State = "book_duration" // ввод продолжительности в часах

	// Поддержка
	StateTicketText     State = "ticket_text"      // описание проблемы
	StateTicketAskPhoto State = "ticket_ask_photo" // прикрепить фото?
	StateTicketPhoto    State = "ticket_photo"     // ожидание фото

	// Тарифы (админ)
	StateAdmTariffName    State = "adm_tariff_name"    // ввод названия при создании
	StateAdmTariffPrice   State = "adm_tariff_price"   // ввод цены
	StateAdmTariffPurpose State = "adm_tariff_purpose" // выбор назначения

	// Заявки (админ)
	StateAdmTicketComment State = "adm_ticket_comment" // комментарий к закрытию
)

type Payload map[string]any

type Item struct {
	ChatID  int64
	State   State
	Payload Payload
}
