package service

import "github.com/iliyamo/surf-school-booking/internal/model"

// SyncSeats translates a booking transition into seat ledger calls.
// It is the single place seat deltas are derived from status and
// session changes; every mutation path (create, update, delete,
// cascade cancellation) must route through it.
//
// prev/cur describe the booking before and after the change.  A nil
// session stands for "no session" (creation has no previous session,
// deletion has no current one).  The decision table:
//
//   - session changed: release on the previous session if the
//     previous status held a seat, reserve on the current session if
//     the current status holds one.  Status-only deltas are not
//     applied separately in this case.
//   - same session: release on a holding→non-holding transition,
//     reserve on a non-holding→holding transition, otherwise no-op.
func SyncSeats(prevSession, curSession *model.Session, prevStatus, curStatus model.BookingStatus) error {
	prevHolds := prevStatus.HoldsSeat()
	curHolds := curStatus.HoldsSeat()

	if prevSession != curSession {
		if prevHolds && prevSession != nil {
			if err := ReleaseSeat(prevSession); err != nil {
				return err
			}
		}
		if curHolds && curSession != nil {
			if err := ReserveSeat(curSession); err != nil {
				return err
			}
		}
		return nil
	}

	if curSession == nil {
		return nil
	}
	if prevHolds && !curHolds {
		return ReleaseSeat(curSession)
	}
	if !prevHolds && curHolds {
		return ReserveSeat(curSession)
	}
	return nil
}
