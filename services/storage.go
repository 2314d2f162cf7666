package services

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/JoshuaDoes/json"
)

var (
	errorInvalidKey    = errors.New("invalid key")
	errorInvalidExtra  = errors.New("invalid extra")
	errorInvalidServer = errors.New("invalid server")
	errorInvalidUser   = errors.New("invalid user")
	errorInvalidType   = errors.New("invalid type")
)

//StateDir is where every Storage keeps its JSON state file
var StateDir = "states"

//Storage is designed for stateless interactions, to set it and forget it until it's needed again
type Storage struct {
	sync.RWMutex `json:"-"`

	Extras  map[string]*StorageObject `json:"extra,omitempty"`
	Servers map[string]*StorageObject `json:"servers,omitempty"`
	Users   map[string]*StorageObject `json:"users,omitempty"`

	path string
}

func NewStorage() *Storage {
	return &Storage{
		Extras:  make(map[string]*StorageObject),
		Servers: make(map[string]*StorageObject),
		Users:   make(map[string]*StorageObject),
	}
}

//LoadFrom reads the named state from StateDir, creating an empty state file when none exists yet
func (s *Storage) LoadFrom(state string) error {
	if s == nil {
		return errors.New("unable to load state into nil storage")
	}

	s.Lock()
	s.path = filepath.Join(StateDir, state+".json")
	stateJSON, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.Unlock()
			return err
		}
		s.Unlock()
		return s.Save()
	}
	defer s.Unlock()

	if err := json.Unmarshal(stateJSON, s); err != nil {
		return err
	}
	if s.Extras == nil {
		s.Extras = make(map[string]*StorageObject)
	}
	if s.Servers == nil {
		s.Servers = make(map[string]*StorageObject)
	}
	if s.Users == nil {
		s.Users = make(map[string]*StorageObject)
	}
	return nil
}

//Save writes the state back to where it was loaded from, doing nothing for in-memory storage
func (s *Storage) Save() error {
	s.RLock()
	defer s.RUnlock()
	if s.path == "" {
		return nil
	}

	stateJSON, err := json.Marshal(s, true)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(s.path, stateJSON, 0644)
}

type StorageObject struct {
	Data map[string]interface{} `json:"data,omitempty"`
}

func (so *StorageObject) Get(key string) (interface{}, error) {
	if data, exists := so.Data[key]; exists {
		return data, nil
	}
	return nil, errorInvalidKey
}
func (so *StorageObject) Set(key string, val interface{}) {
	if so.Data == nil {
		so.Data = make(map[string]interface{})
	}
	so.Data[key] = val
}
func (so *StorageObject) Del(key string) {
	delete(so.Data, key)
}

func get(objects map[string]*StorageObject, id, key string, errMissing error) (interface{}, error) {
	if obj, exists := objects[id]; exists {
		return obj.Get(key)
	}
	return nil, errMissing
}
func set(objects map[string]*StorageObject, id, key string, val interface{}) {
	if _, exists := objects[id]; !exists {
		objects[id] = &StorageObject{Data: make(map[string]interface{})}
	}
	objects[id].Set(key, val)
}
func del(objects map[string]*StorageObject, id, key string) {
	if obj, exists := objects[id]; exists {
		obj.Del(key)
	}
}

func (s *Storage) ExtraGet(extraID, key string) (interface{}, error) {
	s.RLock()
	defer s.RUnlock()
	return get(s.Extras, extraID, key, errorInvalidExtra)
}
func (s *Storage) ExtraSet(extraID, key string, val interface{}) {
	s.Lock()
	defer s.Unlock()
	if s.Extras == nil {
		s.Extras = make(map[string]*StorageObject)
	}
	set(s.Extras, extraID, key, val)
}
func (s *Storage) ExtraDel(extraID, key string) {
	s.Lock()
	defer s.Unlock()
	del(s.Extras, extraID, key)
}

func (s *Storage) ServerGet(serverID, key string) (interface{}, error) {
	s.RLock()
	defer s.RUnlock()
	return get(s.Servers, serverID, key, errorInvalidServer)
}
func (s *Storage) ServerSet(serverID, key string, val interface{}) {
	s.Lock()
	defer s.Unlock()
	if s.Servers == nil {
		s.Servers = make(map[string]*StorageObject)
	}
	set(s.Servers, serverID, key, val)
}
func (s *Storage) ServerDel(serverID, key string) {
	s.Lock()
	defer s.Unlock()
	del(s.Servers, serverID, key)
}

func (s *Storage) UserGet(userID, key string) (interface{}, error) {
	s.RLock()
	defer s.RUnlock()
	return get(s.Users, userID, key, errorInvalidUser)
}
func (s *Storage) UserSet(userID, key string, val interface{}) {
	s.Lock()
	defer s.Unlock()
	if s.Users == nil {
		s.Users = make(map[string]*StorageObject)
	}
	set(s.Users, userID, key, val)
}
func (s *Storage) UserDel(userID, key string) {
	s.Lock()
	defer s.Unlock()
	del(s.Users, userID, key)
}

//AsBool converts a stored value, which may have been round-tripped through JSON
func AsBool(val interface{}, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	b, ok := val.(bool)
	if !ok {
		return false, errorInvalidType
	}
	return b, nil
}

//AsStrings converts a stored value, which may have been round-tripped through JSON
func AsStrings(val interface{}, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	switch v := val.(type) {
	case []string:
		return v, nil
	case []interface{}:
		strs := make([]string, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, errorInvalidType
			}
			strs = append(strs, str)
		}
		return strs, nil
	}
	return nil, errorInvalidType
}
