package discord

import (
	"math/rand"

	"github.com/robfig/cron/v3"
)

//startStatus shows a random status now and rotates it on a schedule
func (discord *ClientDiscord) startStatus() {
	if len(discord.statuses) == 0 {
		return
	}
	discord.setRandomStatus()

	discord.statusOnce.Do(func() {
		discord.cron = cron.New(cron.WithChain(cron.Recover(Log.Cron())))
		if _, err := discord.cron.AddFunc("@every "+discord.statusEvery.String(), discord.setRandomStatus); err != nil {
			Log.Error("Unable to schedule status rotation: ", err)
			return
		}
		discord.cron.Start()
	})
}

func (discord *ClientDiscord) setRandomStatus() {
	status := discord.statuses[rand.Intn(len(discord.statuses))]
	Log.Trace("Setting status: ", status)
	if err := discord.UpdateGameStatus(0, status); err != nil {
		Log.Error("Unable to set status: ", err)
	}
}
