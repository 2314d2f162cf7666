package pages

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/Clinet/squadbot/services"
)

//Reactions used to flip through a tracked list
const (
	EmojiPrev = "\u2b05\ufe0f"
	EmojiNext = "\u27a1\ufe0f"

	variationSelector = "\ufe0f"
)

//Expiry is how long a tracked list stays flippable after its last use
var Expiry = 10 * time.Minute

var (
	ErrNotTracked = errors.New("pages: message is not a tracked list")
	ErrNoPage     = errors.New("pages: no page in that direction")
)

type trackedList struct {
	list    *PagedList
	expires time.Time
}

//Pager remembers which sent messages are paged lists so reactions can flip them
type Pager struct {
	sync.Mutex
	lists map[string]*trackedList
	now   func() time.Time
}

func NewPager() *Pager {
	return &Pager{
		lists: make(map[string]*trackedList),
		now:   time.Now,
	}
}

//Track registers a sent message as the current page of the list
func (pager *Pager) Track(messageID string, list *PagedList) {
	pager.Lock()
	defer pager.Unlock()
	pager.sweep()
	pager.lists[messageID] = &trackedList{list: list, expires: pager.now().Add(Expiry)}
}

//Untrack stops flipping a message, like when it can no longer be edited
func (pager *Pager) Untrack(messageID string) {
	pager.Lock()
	defer pager.Unlock()
	delete(pager.lists, messageID)
}

//Tracked returns how many lists are still flippable
func (pager *Pager) Tracked() int {
	pager.Lock()
	defer pager.Unlock()
	pager.sweep()
	return len(pager.lists)
}

//Flip moves a tracked list one page in the direction of the emoji and returns the new page
func (pager *Pager) Flip(messageID, emoji string) (*services.Message, error) {
	pager.Lock()
	defer pager.Unlock()
	pager.sweep()

	tracked, ok := pager.lists[messageID]
	if !ok {
		return nil, ErrNotTracked
	}

	list := tracked.list
	var page *services.Message
	var err error
	switch strings.TrimSuffix(emoji, variationSelector) {
	case strings.TrimSuffix(EmojiPrev, variationSelector):
		if list.FirstPage {
			return nil, ErrNoPage
		}
		page, err = list.GetPreviousPage()
	case strings.TrimSuffix(EmojiNext, variationSelector):
		if list.LastPage {
			return nil, ErrNoPage
		}
		page, err = list.GetNextPage()
	default:
		return nil, ErrNoPage
	}
	if err != nil {
		return nil, err
	}

	tracked.expires = pager.now().Add(Expiry)
	return page, nil
}

//sweep drops expired lists, must be called with the lock held
func (pager *Pager) sweep() {
	now := pager.now()
	for messageID, tracked := range pager.lists {
		if now.After(tracked.expires) {
			delete(pager.lists, messageID)
		}
	}
}
