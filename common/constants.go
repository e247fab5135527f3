package common

// EnableLogging is not read by any package: the log.Printf calls in buffer
// and storage/disk log unconditionally, and indexhash and lockmanager do
// not log.
const EnableLogging = true
