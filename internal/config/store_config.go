package config

type StoreConfig interface {
	GetMongoURI() string
	GetMongoDatabase() string
}

type Store struct{}

var _ StoreConfig = Store{}

func (Store) GetMongoURI() string {
	return GetEnv("MONGO_URI", "mongodb://localhost:27017")
}

func (Store) GetMongoDatabase() string {
	return GetEnv("MONGO_DATABASE", "peer2park")
}
