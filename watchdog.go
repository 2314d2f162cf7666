package main

import (
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/mitchellh/go-ps"
)

var watchdogSignals = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
var watchdogDelay = 5 * time.Second

//doWatchdog keeps a bot process alive, restarting it whenever it dies
func doWatchdog() {
	log.Trace("--- doWatchdog() ---")

	botPID := spawnBot()
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, watchdogSignals...)
	ticker := time.NewTicker(watchdogDelay)
	defer ticker.Stop()

	for {
		select {
		case sig := <-sc:
			log.Debug("Forwarding ", sig, " to bot process ", botPID)
			if botProcess, err := os.FindProcess(botPID); err == nil {
				_ = botProcess.Signal(sig)
			}
			waitProcess(botPID)
			log.Info("Bot process exited, good-bye!")
			return
		case <-ticker.C:
			if !isProcessRunning(botPID) {
				log.Warn("Bot process ", botPID, " died, restarting it")
				botPID = spawnBot()
			}
		}
	}
}

//killStaleBots kills other processes running this executable, except us and our watchdog
func killStaleBots() {
	processList, err := ps.Processes()
	if err != nil {
		log.Error("Unable to list processes: ", err)
		return
	}
	executable := filepath.Base(os.Args[0])
	for _, process := range processList {
		if process.Pid() == os.Getpid() || process.Pid() == watchdogPID || process.Executable() != executable {
			continue
		}
		if oldProcess, err := os.FindProcess(process.Pid()); err == nil {
			log.Debug("Killing stale bot process ", process.Pid())
			_ = oldProcess.Signal(syscall.SIGKILL)
		}
	}
}

func spawnBot() int {
	log.Trace("--- spawnBot() ---")
	if killOldBot {
		killStaleBots()
	}

	args := []string{
		"--isBot",
		"--watchdogPID", strconv.Itoa(os.Getpid()),
		"--verbosity", strconv.Itoa(verbosity),
		"--config", configFile,
		"--env", envFile,
	}
	botProcess := exec.Command(os.Args[0], args...)
	botProcess.Stdout = os.Stdout
	botProcess.Stderr = os.Stderr

	if err := botProcess.Start(); err != nil {
		log.Fatal("Unable to spawn bot process: ", err)
	}
	log.Debug("Created bot process with PID ", botProcess.Process.Pid)

	//Reap the child so it doesn't linger as a zombie
	go botProcess.Wait()
	return botProcess.Process.Pid
}

func isProcessRunning(pid int) bool {
	process, err := ps.FindProcess(pid)
	return err == nil && process != nil
}

//waitProcess blocks until the process is gone
func waitProcess(pid int) {
	for isProcessRunning(pid) {
		time.Sleep(100 * time.Millisecond)
	}
}
