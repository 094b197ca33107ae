package config

type Store struct {
	KVBackend         string `env:"KV_BACKEND" envDefault:"memory"`
	KVPath            string `env:"KV_PATH" envDefault:"./data/auth.db"`
	SessionsNamespace string `env:"SESSIONS_NAMESPACE" envDefault:"AUTH_SESSIONS"`
	StatesNamespace   string `env:"STATES_NAMESPACE" envDefault:"AUTH_STATES"`
}

var _ StoreConfig = Store{}

func (s Store) GetKVBackend() string         { return s.KVBackend }
func (s Store) GetKVPath() string            { return s.KVPath }
func (s Store) GetSessionsNamespace() string { return s.SessionsNamespace }
func (s Store) GetStatesNamespace() string   { return s.StatesNamespace }
