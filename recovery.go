package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/Clinet/squadbot/services/discord"
)

const (
	crashFile = "crash.txt"
	stackFile = "stacktrace.txt"
)

//recoverPanic writes the crash reason and stack trace for the next run to report, then exits for the watchdog to restart us
func recoverPanic() {
	panicReason := recover()
	if panicReason == nil {
		return
	}

	reason := fmt.Sprint(panicReason)
	log.Error("Squadbot has encountered an unrecoverable error and has crashed: ", reason)

	stack := make([]byte, 65536)
	l := runtime.Stack(stack, true)
	log.Debug("Stack trace:\n", string(stack[:l]))
	if err := os.WriteFile(stackFile, stack[:l], 0644); err != nil {
		log.Error("Failed to write stack trace: ", err)
	}
	if err := os.WriteFile(crashFile, []byte(reason), 0644); err != nil {
		log.Error("Failed to write crash error: ", err)
	}
	os.Exit(1)
}

//checkPanicRecovery DMs the owner about the last crash, if there was one
func checkPanicRecovery(ownerID string) {
	crash, err := os.ReadFile(crashFile)
	if err != nil {
		return
	}
	defer os.Remove(crashFile)
	defer os.Remove(stackFile)

	log.Warn("Recovered from a crash: ", string(crash))
	if ownerID == "" {
		return
	}

	ownerChannel, err := discord.Discord.UserChannelCreate(ownerID)
	if err != nil {
		log.Error("Unable to DM the bot owner: ", err)
		return
	}
	if _, err := discord.Discord.ChannelMessageSend(ownerChannel.ID, "Squadbot has just recovered from an error that caused a crash.\nCrash:\n```"+string(crash)+"```"); err != nil {
		log.Error("Unable to send the crash report: ", err)
		return
	}

	stack, err := os.Open(stackFile)
	if err != nil {
		return
	}
	defer stack.Close()
	if _, err := discord.Discord.ChannelFileSendWithMessage(ownerChannel.ID, "Stack trace:", stackFile, stack); err != nil {
		log.Error("Unable to send the stack trace: ", err)
	}
}
