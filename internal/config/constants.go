package config

// DefaultDatabasePath is the default path for the portal database.
const DefaultDatabasePath = "./portal.db"
