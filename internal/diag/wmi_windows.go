//go:build windows

package diag

import (
	"fmt"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// VideoControllers queries Win32_VideoController through WMI for the
// driver-side adapter view.
func VideoControllers() ([]VideoController, error) {
	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		oleErr, ok := err.(*ole.OleError)
		// S_FALSE: already initialized on this thread.
		if !ok || oleErr.Code() != 1 {
			return nil, fmt.Errorf("diag: CoInitializeEx: %w", err)
		}
	}
	defer ole.CoUninitialize()

	unknown, err := oleutil.CreateObject("WbemScripting.SWbemLocator")
	if err != nil {
		return nil, fmt.Errorf("diag: create WMI locator: %w", err)
	}
	defer unknown.Release()

	locator, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return nil, fmt.Errorf("diag: locator IDispatch: %w", err)
	}
	defer locator.Release()

	serviceVar, err := oleutil.CallMethod(locator, "ConnectServer", ".", `root\cimv2`)
	if err != nil {
		return nil, fmt.Errorf("diag: ConnectServer: %w", err)
	}
	service := serviceVar.ToIDispatch()
	defer service.Release()

	resultVar, err := oleutil.CallMethod(service, "ExecQuery",
		"SELECT Name, DriverVersion FROM Win32_VideoController")
	if err != nil {
		return nil, fmt.Errorf("diag: ExecQuery: %w", err)
	}
	result := resultVar.ToIDispatch()
	defer result.Release()

	countVar, err := oleutil.GetProperty(result, "Count")
	if err != nil {
		return nil, fmt.Errorf("diag: result count: %w", err)
	}
	count := int(countVar.Val)

	var controllers []VideoController
	for i := 0; i < count; i++ {
		itemVar, err := oleutil.CallMethod(result, "ItemIndex", i)
		if err != nil {
			return controllers, fmt.Errorf("diag: item %d: %w", i, err)
		}
		item := itemVar.ToIDispatch()

		var vc VideoController
		if nameVar, err := oleutil.GetProperty(item, "Name"); err == nil {
			vc.Name = nameVar.ToString()
		}
		if verVar, err := oleutil.GetProperty(item, "DriverVersion"); err == nil {
			vc.DriverVersion = verVar.ToString()
		}
		item.Release()
		controllers = append(controllers, vc)
	}
	return controllers, nil
}
