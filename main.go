package main

import (
	"context"
	"log"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/martineghiazaryan/daily-reminder-bot/handlers"
	"github.com/martineghiazaryan/daily-reminder-bot/models"
	"github.com/martineghiazaryan/daily-reminder-bot/utils"
)

// telegramSender adapts the bot client to the dispatcher's VoiceSender.
type telegramSender struct {
	bot *tgbotapi.BotAPI
}

func (s *telegramSender) SendVoice(chatID int64, audio []byte) error {
	voice := tgbotapi.NewVoice(chatID, tgbotapi.FileBytes{Name: "reminder.mp3", Bytes: audio})
	_, err := s.bot.Send(voice)
	return err
}

func main() {
	// Load environment variables
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, continuing..")
		}
	}
	log.Println("environment: ", os.Getenv("APP_ENV"))

	token := os.Getenv("TG_BOT_TOKEN")
	if token == "" {
		log.Fatal("TG_BOT_TOKEN is not set")
	}
	pgDSN := os.Getenv("DATABASE_URL")
	if pgDSN == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	// Initialize the database connection pool
	dbPool, pgErr := utils.OpenDB(pgDSN)
	if pgErr != nil {
		log.Fatalf("Failed to connect to database: %v", pgErr)
	}
	defer dbPool.Close()

	if err := utils.InitSchema(dbPool); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	store := &utils.TaskStore{DB: dbPool}

	// Redis is optional: without it reminders simply lose the delivered-once
	// marker across restarts.
	var redisClient *redis.Client
	if redisDSN := os.Getenv("REDIS_URL"); redisDSN != "" {
		redisClient = utils.OpenRedisPool(redisDSN)
		defer redisClient.Close()
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Fatalf("Failed to connect to Telegram: %v", err)
	}
	log.Printf("Authorized on account %s", bot.Self.UserName)

	scheduler := utils.NewScheduler(64)
	scheduler.Start()
	defer scheduler.Stop()

	dispatcher := &utils.Dispatcher{
		Sender: &telegramSender{bot: bot},
		Redis:  redisClient,
	}

	// Drain due jobs off the scheduler; each delivery runs in its own
	// goroutine so a slow synthesis call never delays the next timer.
	go func() {
		for job := range scheduler.C() {
			go dispatcher.Deliver(job)
		}
	}()

	rollover := os.Getenv("REMINDER_ROLLOVER") == "true"
	commands := &handlers.Commands{
		Store:     store,
		Scheduler: scheduler,
		Rollover:  rollover,
	}

	// Scheduled jobs live only in memory. Opting in here rebuilds them from
	// the store's pending rows after a restart.
	if os.Getenv("RESCHEDULE_ON_START") == "true" {
		if err := rescheduleFromStore(store, scheduler, rollover); err != nil {
			log.Println("Error rescheduling pending reminders:", err)
		}
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	log.Println("🤖 Bot is running...")
	for update := range updates {
		if update.Message == nil || !update.Message.IsCommand() {
			continue
		}

		ctx := context.Background()
		chatID := update.Message.Chat.ID
		args := update.Message.CommandArguments()

		var reply string
		switch update.Message.Command() {
		case "start":
			reply = commands.Start()
		case "add":
			reply = commands.Add(ctx, chatID, args)
		case "tasks":
			reply = commands.List(ctx, chatID)
		case "done":
			reply = commands.Complete(ctx, args)
		case "edit":
			reply = commands.Edit(ctx, args)
		default:
			continue
		}

		if _, err := bot.Send(tgbotapi.NewMessage(chatID, reply)); err != nil {
			log.Println("Error sending reply:", err)
		}
	}
}

func rescheduleFromStore(store *utils.TaskStore, scheduler *utils.Scheduler, rollover bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tasks, err := store.ListAllPending(ctx)
	if err != nil {
		return err
	}

	count := 0
	for _, t := range tasks {
		hour, minute, err := utils.ParseDueTime(t.DueTime)
		if err != nil {
			log.Printf("Skipping task %d with unparseable due time %q", t.ID, t.DueTime)
			continue
		}
		fireAt, ok := utils.NextFireTime(time.Now(), hour, minute, rollover)
		if !ok {
			continue
		}
		job := models.ReminderJob{TaskID: t.ID, UserID: t.UserID, Task: t.Task, FireAt: fireAt}
		if _, err := scheduler.Schedule(job); err != nil {
			return err
		}
		count++
	}
	log.Printf("Rescheduled %d pending reminders from the store", count)
	return nil
}
