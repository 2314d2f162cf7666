package features

import (
	"sync"
)

//Names of the features that can be toggled from the configuration
const (
	AutoMod     = "automod"
	TTS         = "tts"
	Convos      = "convos"
	Fun         = "fun"
	Stats       = "stats"
	Scrims      = "scrims"
	VoiceKeeper = "voicekeeper"
)

type FeatureMap struct {
	sync.RWMutex `json:"-"`
	Features     []*Feature `json:"features"`
}

var featureMap = &FeatureMap{}

type Feature struct {
	Name   string `json:"name" toml:"name"`
	Toggle bool   `json:"toggle" toml:"toggle"`
}

func SetFeatures(features []*Feature) {
	featureMap.Lock()
	defer featureMap.Unlock()
	featureMap.Features = features
}

func IsEnabled(feature string) bool {
	featureMap.RLock()
	defer featureMap.RUnlock()
	for _, f := range featureMap.Features {
		if feature == f.Name {
			return f.Toggle
		}
	}
	return false
}

//Defaults returns every known feature switched on
func Defaults() []*Feature {
	return []*Feature{
		{Name: AutoMod, Toggle: true},
		{Name: TTS, Toggle: true},
		{Name: Convos, Toggle: true},
		{Name: Fun, Toggle: true},
		{Name: Stats, Toggle: true},
		{Name: Scrims, Toggle: true},
		{Name: VoiceKeeper, Toggle: true},
	}
}
