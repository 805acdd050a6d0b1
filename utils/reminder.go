package utils

import (
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/martineghiazaryan/daily-reminder-bot/models"
)

const reminderTemplate = "Here is your reminder: %s"

// VoiceSender delivers a synthesized clip to a chat. Implemented by the
// Telegram client in main.
type VoiceSender interface {
	SendVoice(chatID int64, audio []byte) error
}

// Dispatcher turns a due reminder job into a voice message. Every failure in
// here is logged and swallowed: a reminder that cannot be delivered is lost,
// never retried, and never reported to the user.
type Dispatcher struct {
	Sender VoiceSender
	Redis  *redis.Client // nil disables the delivered-once marker

	// Synth is swappable in tests; nil means SynthesizeVoice.
	Synth func(text string) ([]byte, error)
}

// Deliver synthesizes and sends the reminder for one job. The audio bytes are
// scoped to this call, so they are released whether or not the send succeeds.
func (d *Dispatcher) Deliver(job models.ReminderJob) {
	if d.Redis != nil {
		first, err := MarkReminderDelivered(d.Redis, job.TaskID)
		if err != nil {
			// Dedupe is best effort. Redis being down should not cost the reminder.
			log.Println("Error marking reminder delivered:", err)
		} else if !first {
			log.Printf("Reminder for task %d already delivered, skipping", job.TaskID)
			return
		}
	}

	synth := d.Synth
	if synth == nil {
		synth = SynthesizeVoice
	}

	audio, err := synth(fmt.Sprintf(reminderTemplate, job.Task))
	if err != nil {
		log.Println("Error synthesizing voice reminder:", err)
		return
	}

	if err := d.Sender.SendVoice(job.UserID, audio); err != nil {
		log.Println("Error sending voice reminder:", &DeliveryError{Stage: "send", Err: err})
		return
	}

	log.Printf("Voice reminder sent to %d: %s", job.UserID, job.Task)
}
