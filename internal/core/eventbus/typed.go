package eventbus

// PublishDeviceRegistered publishes a device.registered event.
func (bus *EventBus) PublishDeviceRegistered(p DeviceRegisteredPayload) {
	bus.send(EventDeviceRegistered, p)
}

// SubscribeDeviceRegistered subscribes to device.registered events.
func (bus *EventBus) SubscribeDeviceRegistered(fn func(DeviceRegisteredPayload)) {
	bus.subscribe(EventDeviceRegistered, func(p any) { fn(p.(DeviceRegisteredPayload)) })
}

// PublishDeviceRegistrationFailed publishes a device.registration-failed event.
func (bus *EventBus) PublishDeviceRegistrationFailed(p DeviceRegistrationFailedPayload) {
	bus.send(EventDeviceRegistrationFailed, p)
}

// SubscribeDeviceRegistrationFailed subscribes to device.registration-failed events.
func (bus *EventBus) SubscribeDeviceRegistrationFailed(fn func(DeviceRegistrationFailedPayload)) {
	bus.subscribe(EventDeviceRegistrationFailed, func(p any) { fn(p.(DeviceRegistrationFailedPayload)) })
}

// PublishNotificationClicked publishes a notification.clicked event.
func (bus *EventBus) PublishNotificationClicked(p NotificationClickedPayload) {
	bus.send(EventNotificationClicked, p)
}

// SubscribeNotificationClicked subscribes to notification.clicked events.
func (bus *EventBus) SubscribeNotificationClicked(fn func(NotificationClickedPayload)) {
	bus.subscribe(EventNotificationClicked, func(p any) { fn(p.(NotificationClickedPayload)) })
}

// PublishNotificationReceived publishes a notification.received event.
func (bus *EventBus) PublishNotificationReceived(p NotificationReceivedPayload) {
	bus.send(EventNotificationReceived, p)
}

// SubscribeNotificationReceived subscribes to notification.received events.
func (bus *EventBus) SubscribeNotificationReceived(fn func(NotificationReceivedPayload)) {
	bus.subscribe(EventNotificationReceived, func(p any) { fn(p.(NotificationReceivedPayload)) })
}

// PublishPermissionChanged publishes a permission.changed event.
func (bus *EventBus) PublishPermissionChanged(p PermissionChangedPayload) {
	bus.send(EventPermissionChanged, p)
}

// SubscribePermissionChanged subscribes to permission.changed events.
func (bus *EventBus) SubscribePermissionChanged(fn func(PermissionChangedPayload)) {
	bus.subscribe(EventPermissionChanged, func(p any) { fn(p.(PermissionChangedPayload)) })
}

// PublishStatusReported publishes a status.reported event.
func (bus *EventBus) PublishStatusReported(p StatusReportedPayload) {
	bus.send(EventStatusReported, p)
}

// SubscribeStatusReported subscribes to status.reported events.
func (bus *EventBus) SubscribeStatusReported(fn func(StatusReportedPayload)) {
	bus.subscribe(EventStatusReported, func(p any) { fn(p.(StatusReportedPayload)) })
}

// PublishTokenAcquired publishes a token.acquired event.
func (bus *EventBus) PublishTokenAcquired(p TokenAcquiredPayload) {
	bus.send(EventTokenAcquired, p)
}

// SubscribeTokenAcquired subscribes to token.acquired events.
func (bus *EventBus) SubscribeTokenAcquired(fn func(TokenAcquiredPayload)) {
	bus.subscribe(EventTokenAcquired, func(p any) { fn(p.(TokenAcquiredPayload)) })
}
