package providers

// IFanOutProvider defines pub-sub channels of effect status and event notifications.
type IFanOutProvider interface {
	SubscribeStatusUpdates() (int64, chan *EffectStatus)
	UnSubscribeStatusUpdates(int64)
	ChannelInStatusUpdates() chan *EffectStatus

	SubscribeEventUpdates() (int64, chan string)
	UnSubscribeEventUpdates(int64)
	ChannelInEventUpdates() chan string
	Close()
}
