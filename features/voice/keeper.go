package voice

import (
	"sync"
	"time"

	"github.com/Clinet/squadbot/services"
	"github.com/robfig/cron/v3"
)

//Keeper holds the bot in a designated voice channel, rejoining it on a schedule.
// Disconnecting the bot by hand pauses it until someone asks it to stay again.
type Keeper struct {
	sync.Mutex

	service   services.Service
	channelID string
	serverID  string //Filled in on the first successful check
	every     time.Duration
	cron      *cron.Cron

	expectLeave int //Leaves the keeper caused itself and shouldn't pause on
}

func NewKeeper(service services.Service, channelID string, every time.Duration) *Keeper {
	if every <= 0 {
		every = 5 * time.Minute
	}
	return &Keeper{
		service:   service,
		channelID: channelID,
		every:     every,
	}
}

//Start checks the channel once and then on every interval, doing only the check when already started
func (k *Keeper) Start() error {
	Log.Trace("--- Keeper.Start(", k.channelID, ") ---")
	k.Lock()
	if k.cron == nil {
		k.cron = cron.New(cron.WithChain(cron.Recover(Log.Cron())))
		if _, err := k.cron.AddFunc("@every "+k.every.String(), k.Check); err != nil {
			k.cron = nil
			k.Unlock()
			return err
		}
		k.cron.Start()
		Log.Info("Voice keeper checking channel ", k.channelID, " every ", k.every)
	}
	k.Unlock()

	k.Check()
	return nil
}

func (k *Keeper) Stop() {
	k.Lock()
	c := k.cron
	k.cron = nil
	k.Unlock()

	if c != nil {
		<-c.Stop().Done() //Waits out a running check
	}
}

//Active reports whether the keeper is allowed to join, which it is unless paused
func (k *Keeper) Active() bool {
	active, err := services.AsBool(Storage.ExtraGet("keeper", "active"))
	if err != nil {
		return true
	}
	return active
}

func (k *Keeper) SetActive(active bool) {
	if k.Active() == active {
		return
	}
	Storage.ExtraSet("keeper", "active", active)
	if err := Storage.Save(); err != nil {
		Log.Error(err)
	}
	if active {
		Log.Info("Voice keeper resumed")
	} else {
		Log.Info("Voice keeper paused")
	}
}

func (k *Keeper) ServerID() string {
	k.Lock()
	defer k.Unlock()
	return k.serverID
}

func (k *Keeper) ChannelID() string {
	return k.channelID
}

//Connected reports whether the bot currently sits in the designated channel
func (k *Keeper) Connected() bool {
	serverID := k.ServerID()
	if serverID == "" {
		return false
	}
	return k.service.VoiceChannelOf(serverID) == k.channelID
}

//Check joins the designated channel if the bot isn't already in it. Failures are logged and retried on the next check.
func (k *Keeper) Check() {
	if !k.Active() {
		Log.Trace("Voice keeper is paused, skipping check")
		return
	}

	channel, err := k.service.GetChannel(k.channelID)
	if err != nil {
		Log.Error("Unable to fetch voice channel ", k.channelID, ": ", err)
		return
	}
	if !channel.Voice {
		Log.Warn("Channel ", k.channelID, " is not a voice channel, skipping check")
		return
	}
	k.Lock()
	k.serverID = channel.ServerID
	k.Unlock()

	current := k.service.VoiceChannelOf(channel.ServerID)
	if current == k.channelID {
		return
	}
	if current != "" {
		Log.Debug("Leaving voice channel ", current, " for ", k.channelID)
		k.leave(channel.ServerID)
	}

	if err := k.service.VoiceJoin(channel.ServerID, k.channelID, false, true); err != nil {
		Log.Error("Unable to join voice channel ", k.channelID, ": ", err)
		return
	}
	Log.Info("Joined voice channel ", k.channelID)
}

func (k *Keeper) leave(serverID string) error {
	k.Lock()
	k.expectLeave++
	k.Unlock()

	if err := k.service.VoiceLeave(serverID); err != nil {
		k.Lock()
		k.expectLeave--
		k.Unlock()
		return err
	}
	return nil
}

//Leave disconnects from the designated channel and pauses the keeper
func (k *Keeper) Leave() error {
	k.SetActive(false)
	serverID := k.ServerID()
	if serverID == "" {
		return services.ErrNotConnected
	}
	return k.leave(serverID)
}

//OnVoiceStateUpdate takes the bot's own voice state changes, pausing the keeper when it was disconnected by someone else
func (k *Keeper) OnVoiceStateUpdate(serverID, beforeChannelID, afterChannelID string) {
	Log.Trace("--- Keeper.OnVoiceStateUpdate(", serverID, ", ", beforeChannelID, ", ", afterChannelID, ") ---")
	k.Lock()
	if k.serverID != "" && serverID != k.serverID {
		k.Unlock()
		return
	}
	if beforeChannelID == "" || afterChannelID != "" {
		k.Unlock()
		return
	}
	if k.expectLeave > 0 {
		k.expectLeave--
		k.Unlock()
		return
	}
	k.Unlock()

	Log.Info("Disconnected from voice by someone else")
	k.SetActive(false)
}
