package voice

import (
	"net/url"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/Clinet/squadbot/services"
)

const ttsEndpoint = "https://translate.google.com/translate_tts"

//TTSURL returns a Google Translate speech URL for a single chunk of text
func TTSURL(text, lang string) string {
	query := url.Values{}
	query.Set("ie", "UTF-8")
	query.Set("client", "tw-ob")
	query.Set("tl", lang)
	query.Set("q", text)
	return ttsEndpoint + "?" + query.Encode()
}

//ChunkText splits text into chunks of at most max characters, breaking between words where it can
func ChunkText(text string, max int) []string {
	words := strings.Fields(text)
	if max <= 0 || len(words) == 0 {
		return nil
	}

	chunks := make([]string, 0)
	current := ""
	flush := func() {
		if current != "" {
			chunks = append(chunks, current)
			current = ""
		}
	}
	for _, word := range words {
		//Words too long for a chunk of their own get cut up
		for utf8.RuneCountInString(word) > max {
			flush()
			runes := []rune(word)
			chunks = append(chunks, string(runes[:max]))
			word = string(runes[max:])
		}
		if word == "" {
			continue
		}

		if current == "" {
			current = word
		} else if utf8.RuneCountInString(current)+1+utf8.RuneCountInString(word) <= max {
			current += " " + word
		} else {
			flush()
			current = word
		}
	}
	flush()
	return chunks
}

//Speaker plays speech into voice channels, one playback per server at a time
type Speaker struct {
	sync.Mutex
	speaking map[string]bool
	wg       sync.WaitGroup
}

func NewSpeaker() *Speaker {
	return &Speaker{speaking: make(map[string]bool)}
}

func (s *Speaker) Busy(serverID string) bool {
	s.Lock()
	defer s.Unlock()
	return s.speaking[serverID]
}

//Speak plays each URL in order in the background, returning services.ErrBusy if the server is already being spoken to
func (s *Speaker) Speak(service services.Service, serverID string, mediaURLs []string) error {
	s.Lock()
	if s.speaking[serverID] {
		s.Unlock()
		return services.ErrBusy
	}
	s.speaking[serverID] = true
	s.wg.Add(1)
	s.Unlock()

	go func() {
		defer s.wg.Done()
		defer func() {
			s.Lock()
			delete(s.speaking, serverID)
			s.Unlock()
		}()

		for i, mediaURL := range mediaURLs {
			Log.Trace("Speaking chunk ", i+1, "/", len(mediaURLs), " in ", serverID)
			if err := service.VoicePlay(serverID, mediaURL); err != nil {
				Log.Error("Unable to speak in ", serverID, ": ", err)
				return
			}
		}
	}()
	return nil
}

//Wait blocks until every playback has finished
func (s *Speaker) Wait() {
	s.wg.Wait()
}
