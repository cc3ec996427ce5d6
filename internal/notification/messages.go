package notification

import "fmt"

// Message templates for the WhatsApp channel.

func AnsweredMessage(clientName, oracleName string) string {
	return fmt.Sprintf("Hi %s, %s has answered your consultation. Open the app to read it.", clientName, oracleName)
}

func NewConsultationMessage(oracleName, clientName string) string {
	return fmt.Sprintf("Hi %s, you have a new consultation waiting from %s.", oracleName, clientName)
}

func RejectedMessage(clientName, oracleName string) string {
	return fmt.Sprintf("Hi %s, %s could not take your consultation. Your credits were refunded.", clientName, oracleName)
}

// Inbox titles and bodies.

func AnsweredInbox(oracleName string) (title, body string) {
	return "Your consultation was answered",
		fmt.Sprintf("%s has answered your consultation. Open it to read the reply.", oracleName)
}

func NewConsultationInbox(clientName string, questions int) (title, body string) {
	return "New consultation",
		fmt.Sprintf("%s sent you a consultation with %d question(s).", clientName, questions)
}

func RejectedInbox(oracleName, reason string) (title, body string) {
	body = fmt.Sprintf("%s could not take your consultation. Your credits were refunded.", oracleName)
	if reason != "" {
		body += " Reason: " + reason
	}
	return "Consultation rejected", body
}

func DeadLetterInbox(clientName, consultationID, lastError string) (title, body string) {
	return "Consultation processing failed",
		fmt.Sprintf("Automatic processing for the consultation from %s (id %s) failed after all retries and needs manual attention. Last error: %s",
			clientName, consultationID, lastError)
}
