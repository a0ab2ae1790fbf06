package support

import "fmt"

// Reply keyboard labels. The label text doubles as the routing key for
// button presses, so changing it breaks in-flight keyboards.
const (
	BtnShowChats   = "📋 Показать активные чаты"
	BtnAskQuestion = "❓ Задать вопрос"
	BtnPlaceOrder  = "🛍 Сделать заказ"

	BtnReply = "✍️ Ответить"
	BtnClose = "❌ Закрыть чат"
)

const (
	// TextAdminWelcome greets the administrator on /start.
	TextAdminWelcome = "Добро пожаловать, администратор!"
	// TextChooseAction asks a regular user to pick question or order.
	TextChooseAction = "Выберите действие:"

	TextDescribeQuestion = "Опишите ваш вопрос"
	TextDescribeOrder    = "Опишите ваш заказ"

	// TextForwarded confirms to the user that the message reached the admin.
	TextForwarded = "Ваше сообщение отправлено. Ожидайте ответа администратора."
	// TextReplySent confirms to the admin that the reply was delivered.
	TextReplySent = "Ответ отправлен пользователю"

	TextChatNotFound   = "Чат не найден"
	TextNoActiveChats  = "Нет активных чатов"
	TextShowChatsError = "Произошла ошибка при отображении чатов"

	// TextChatClosedUser notifies the user that the admin closed the chat.
	TextChatClosedUser = "Администратор закрыл чат. Если у вас появятся новые вопросы, начните новый диалог."

	// TextUserFallback is the display name used when a sender has no username.
	TextUserFallback = "Пользователь"
)

// FormatNewRequest renders the summary forwarded to the admin. The
// "ID: <digits>" line is load-bearing: admin replies to this message are
// routed back to the user by parsing it.
func FormatNewRequest(chat ActiveChat) string {
	header := "Новое обращение"
	if chat.Topic == TopicOrder {
		header = "Новый заказ"
	}
	return fmt.Sprintf("%s\nОт: %s\nID: %d\nСообщение: %s", header, chat.Name, chat.UserID, chat.Text)
}

// FormatChatSummary renders one entry of the active chat listing.
func FormatChatSummary(chat ActiveChat) string {
	kind := "❓ Вопрос"
	if chat.Topic == TopicOrder {
		kind = "🛍 Заказ"
	}
	return fmt.Sprintf("Тип: %s\nОт пользователя: %d\nСообщение: %s", kind, chat.UserID, chat.Text)
}

// FormatReplyPrompt asks the admin to type a message for the target user.
func FormatReplyPrompt(userID int64) string {
	return fmt.Sprintf("Введите сообщение для пользователя %d. Все, что вы напишете, будет отправлено пользователю.", userID)
}

// FormatChatClosed confirms chat closure to the admin.
func FormatChatClosed(userID int64) string {
	return fmt.Sprintf("Чат с пользователем %d закрыт", userID)
}
