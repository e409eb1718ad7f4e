package windows

const (
	// Registry strings
	REG_ENVIRONMENT      = `SYSTEM\CurrentControlSet\Control\Session Manager\Environment`
	REG_ENVIRONMENT_PATH = "Path"

	// SendMessageTimeoutW arguments for announcing an environment change
	HWND_BROADCAST       = 0xffff
	WM_SETTINGCHANGE     = 0x001A
	SMTO_ABORTIFHUNG     = 0x0002
	BROADCAST_TIMEOUT_MS = 1000
)
