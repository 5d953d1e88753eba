package mock

import "github.com/fwojciec/idmbatch"

var _ idmbatch.SettingsStore = (*SettingsStore)(nil)

// SettingsStore is a mock implementation of idmbatch.SettingsStore.
type SettingsStore struct {
	LoadFn func() (*idmbatch.Settings, error)
	SaveFn func(settings *idmbatch.Settings) error
}

func (s *SettingsStore) Load() (*idmbatch.Settings, error) {
	return s.LoadFn()
}

func (s *SettingsStore) Save(settings *idmbatch.Settings) error {
	return s.SaveFn(settings)
}
