package providers

import "context"

// IConnectionManagerProvider defines cache of device clients.
type IConnectionManagerProvider interface {
	GetClient(ctx context.Context, host string) (IDeviceClientProvider, error)
	CloseClient(host string)
	CloseAll()
	ClientCount() int
	ConnectedHosts() []string
	TestConnection(ctx context.Context, host string) bool
}
