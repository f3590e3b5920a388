package keychain

import "github.com/zalando/go-keyring"

const serviceName = "welcomebot"

// Get retrieves a bot token from the system keychain.
func Get(account string) (string, error) {
	return keyring.Get(serviceName, account)
}

// Set stores a bot token in the system keychain.
func Set(account, token string) error {
	return keyring.Set(serviceName, account, token)
}
