package windows

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	moduser32 = windows.NewLazySystemDLL("user32.dll")

	procSendMessageTimeoutW = moduser32.NewProc("SendMessageTimeoutW")
)

// SendMessageTimeout wraps SendMessageTimeoutW with a string lParam
func SendMessageTimeout(hwnd uintptr, msg uint32, wParam uintptr, lParam string, flags, timeout uint32) (result uintptr, err error) {
	p, err := windows.UTF16PtrFromString(lParam)
	if err != nil {
		return 0, err
	}

	r1, _, e1 := syscall.SyscallN(procSendMessageTimeoutW.Addr(), hwnd, uintptr(msg), wParam, uintptr(unsafe.Pointer(p)), uintptr(flags), uintptr(timeout), uintptr(unsafe.Pointer(&result)))
	if r1 == 0 {
		if e1 != 0 {
			err = error(e1)
		} else {
			err = syscall.EINVAL
		}
	}
	return
}
