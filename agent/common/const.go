package common

const (
	AGENT_NAME_LONG  = "Aeon Remote Support Installer"
	AGENT_FILENAME   = "RemoteSupportInstaller"
	SERVICE_NAME_VPN = "Netbird"
)
