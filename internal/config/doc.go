// Package config loads the wsdlsync settings.
//
// Settings are layered. Defaults come first, then the user file
// (~/.config/wsdlsync/config.yaml), then the workspace file
// (<workspace>/.wsdlsync/config.yaml), then WSDLSYNC_* environment
// variables. An explicit --config file replaces both files.
//
// # Example
//
//	autoRunOnChange: true
//	showNotifications: true
//	autoUpdateOnWSDLChange: false
//	wsdlCheckInterval: 30
//	showChangeDetails: true
//	autoStartMonitoring: false
//	tool: dotnet
//	fetchTimeout: 30s
//	generationTimeout: 10m
//	promptTimeout: 60s
//	suppressionWindow: 3s
//
// The check interval is in seconds and is clamped to 5..300.
package config
