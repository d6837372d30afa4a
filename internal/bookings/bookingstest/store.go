// Package bookingstest provides an in-memory booking store with the same
// transactional behaviour as the gorm repositories, for service tests.
package bookingstest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"turfbook/internal/bookings"
	"turfbook/internal/notifications"
	"turfbook/internal/turfs"
	"turfbook/internal/users"
)

// Store implements bookings.Repository and bookings.UnitOfWork; Inbox
// serves its notification table. Rows are copied in and out so callers never share
// memory with the store.
type Store struct {
	mu sync.Mutex

	Turfs         map[int64]turfs.Turf
	Bookings      map[int64]bookings.Booking
	Payments      map[int64]bookings.Payment
	Cancellations []bookings.Cancellation
	Notifications []notifications.Notification

	// FailOn makes the named operation return an error, e.g. "CreatePayment".
	FailOn map[string]error
	// FailTransition makes SaveTransition fail for the listed booking ids only.
	FailTransition map[int64]error

	nextID int64
	Now    func() time.Time
}

func NewStore() *Store {
	return &Store{
		Turfs:          make(map[int64]turfs.Turf),
		Bookings:       make(map[int64]bookings.Booking),
		Payments:       make(map[int64]bookings.Payment),
		FailOn:         make(map[string]error),
		FailTransition: make(map[int64]error),
		nextID:         100,
		Now:            time.Now,
	}
}

var (
	ErrInjected = errors.New("injected failure")
	// ErrDuplicatePayment stands in for a unique violation on payments.
	ErrDuplicatePayment = errors.New("duplicate key value violates unique constraint on payments")
)

func (s *Store) fail(op string) error {
	if err, ok := s.FailOn[op]; ok {
		if err == nil {
			return ErrInjected
		}
		return err
	}
	return nil
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// AddTurf seeds a turf and returns it.
func (s *Store) AddTurf(t turfs.Turf) turfs.Turf {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == 0 {
		t.ID = s.id()
	}
	s.Turfs[t.ID] = t
	return t
}

// AddBooking seeds a booking as-is, keeping CreatedAt if set.
func (s *Store) AddBooking(b bookings.Booking) bookings.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == 0 {
		b.ID = s.id()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.Now()
	}
	s.Bookings[b.ID] = b
	return b
}

func (s *Store) AddPayment(p bookings.Payment) bookings.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id()
	}
	s.Payments[p.ID] = p
	return p
}

// Booking returns the stored copy of a booking.
func (s *Store) Booking(id int64) bookings.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Bookings[id]
}

// PaymentsFor returns a booking's payments in id order.
func (s *Store) PaymentsFor(bookingID int64) []bookings.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []bookings.Payment
	for _, p := range s.Payments {
		if p.BookingID == bookingID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// NotificationsFor returns the in-app messages of one user.
func (s *Store) NotificationsFor(userID int64) []notifications.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []notifications.Notification
	for _, n := range s.Notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// ---- UnitOfWork ----

type snapshot struct {
	bookings      map[int64]bookings.Booking
	payments      map[int64]bookings.Payment
	cancellations []bookings.Cancellation
	notifications []notifications.Notification
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		bookings:      make(map[int64]bookings.Booking, len(s.Bookings)),
		payments:      make(map[int64]bookings.Payment, len(s.Payments)),
		cancellations: append([]bookings.Cancellation(nil), s.Cancellations...),
		notifications: append([]notifications.Notification(nil), s.Notifications...),
	}
	for k, v := range s.Bookings {
		snap.bookings[k] = v
	}
	for k, v := range s.Payments {
		snap.payments[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Bookings = snap.bookings
	s.Payments = snap.payments
	s.Cancellations = snap.cancellations
	s.Notifications = snap.notifications
}

// Do runs fn and restores every table if it fails.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, tx bookings.Tx) error) error {
	snap := s.snapshot()
	if err := fn(ctx, bookings.Tx{Bookings: s, Notifications: s.Inbox()}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// ---- bookings.Repository ----

func (s *Store) Create(_ context.Context, b *bookings.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateBooking"); err != nil {
		return err
	}
	b.ID = s.id()
	b.CreatedAt = s.Now()
	b.UpdatedAt = b.CreatedAt
	s.Bookings[b.ID] = *b
	return nil
}

func (s *Store) GetByID(_ context.Context, id int64) (*bookings.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.Bookings[id]
	if !ok {
		return nil, bookings.ErrBookingNotFound
	}
	return &b, nil
}

func (s *Store) GetByIDForUpdate(ctx context.Context, id int64) (*bookings.Booking, error) {
	return s.GetByID(ctx, id)
}

func (s *Store) GetForOwner(_ context.Context, id, ownerID int64) (*bookings.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.Bookings[id]
	if !ok || s.Turfs[b.TurfID].OwnerID != ownerID {
		return nil, bookings.ErrBookingNotFound
	}
	return &b, nil
}

func (s *Store) ListForTurfDay(_ context.Context, turfID int64, dayStart, dayEnd time.Time) ([]bookings.Booking, error) {
	return s.filter(func(b bookings.Booking) bool {
		return b.TurfID == turfID && !b.StartTime.Before(dayStart) && b.StartTime.Before(dayEnd)
	}), nil
}

func (s *Store) ListByOrganizer(_ context.Context, organizerID int64, q bookings.BookingListQuery) ([]bookings.Booking, int64, error) {
	return s.page(func(b bookings.Booking) bool { return b.OrganizerID == organizerID }, q)
}

func (s *Store) ListForOwner(_ context.Context, ownerID int64, q bookings.BookingListQuery) ([]bookings.Booking, int64, error) {
	s.mu.Lock()
	owned := make(map[int64]bool)
	for id, t := range s.Turfs {
		owned[id] = t.OwnerID == ownerID
	}
	s.mu.Unlock()
	return s.page(func(b bookings.Booking) bool {
		return owned[b.TurfID] && (q.TurfID == 0 || b.TurfID == q.TurfID)
	}, q)
}

func (s *Store) page(match func(bookings.Booking) bool, q bookings.BookingListQuery) ([]bookings.Booking, int64, error) {
	list := s.filter(func(b bookings.Booking) bool {
		if !match(b) {
			return false
		}
		if q.Status != "" && b.Status != q.Status {
			return false
		}
		if q.PaymentStatus != "" && b.PaymentStatus != q.PaymentStatus {
			return false
		}
		if !q.From.IsZero() && b.StartTime.Before(q.From) {
			return false
		}
		if !q.To.IsZero() && !b.StartTime.Before(q.To) {
			return false
		}
		return true
	})
	total := int64(len(list))
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	from := (q.Page - 1) * q.Limit
	if from >= len(list) {
		return []bookings.Booking{}, total, nil
	}
	to := from + q.Limit
	if to > len(list) {
		to = len(list)
	}
	return list[from:to], total, nil
}

func (s *Store) ListOverdue(_ context.Context, now time.Time, window time.Duration, afterID int64, limit int) ([]bookings.Booking, error) {
	list := s.filter(func(b bookings.Booking) bool {
		return b.ID > afterID &&
			b.Status == bookings.StatusApproved &&
			b.PaymentStatus == bookings.PaymentStatusPending &&
			(!b.StartTime.After(now) || !b.CreatedAt.After(now.Add(-window)))
	})
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (s *Store) HasBookedOverlap(_ context.Context, turfID int64, start, end time.Time, excludeID int64) (bool, error) {
	hits := s.filter(func(b bookings.Booking) bool {
		return b.TurfID == turfID && b.ID != excludeID && b.Status.Occupies() && b.Overlaps(start, end)
	})
	return len(hits) > 0, nil
}

func (s *Store) LockTurf(_ context.Context, turfID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Turfs[turfID]; !ok {
		return bookings.ErrTurfNotFound
	}
	return nil
}

func (s *Store) SaveTransition(_ context.Context, b *bookings.Booking, from bookings.Status, fromPayment bookings.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("SaveTransition"); err != nil {
		return err
	}
	if err, ok := s.FailTransition[b.ID]; ok {
		if err == nil {
			err = ErrInjected
		}
		return err
	}
	current, ok := s.Bookings[b.ID]
	if !ok || current.Status != from || current.PaymentStatus != fromPayment {
		return bookings.ErrStaleBooking
	}
	current.Status = b.Status
	current.PaymentStatus = b.PaymentStatus
	current.CancellationReason = b.CancellationReason
	current.UpdatedAt = s.Now()
	s.Bookings[b.ID] = current
	b.UpdatedAt = current.UpdatedAt
	return nil
}

func (s *Store) LatestPayment(_ context.Context, bookingID int64) (*bookings.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *bookings.Payment
	for _, p := range s.Payments {
		if p.BookingID != bookingID {
			continue
		}
		if latest == nil || p.ID > latest.ID {
			p := p
			latest = &p
		}
	}
	if latest == nil {
		return nil, bookings.ErrPaymentNotFound
	}
	return latest, nil
}

func (s *Store) PaymentByReference(_ context.Context, refs ...string) (*bookings.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *bookings.Payment
	for _, p := range s.Payments {
		if !matchesRef(p.Reference, refs) && !matchesRef(p.TransactionID, refs) {
			continue
		}
		if found == nil || p.ID < found.ID {
			p := p
			found = &p
		}
	}
	if found == nil {
		return nil, bookings.ErrPaymentNotFound
	}
	return found, nil
}

func matchesRef(v *string, refs []string) bool {
	if v == nil {
		return false
	}
	for _, r := range refs {
		if *v == r {
			return true
		}
	}
	return false
}

func (s *Store) CreatePayment(_ context.Context, p *bookings.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreatePayment"); err != nil {
		return err
	}
	if err := s.checkUnique(p); err != nil {
		return err
	}
	p.ID = s.id()
	p.CreatedAt = s.Now()
	s.Payments[p.ID] = *p
	return nil
}

func (s *Store) UpdatePayment(_ context.Context, p *bookings.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("UpdatePayment"); err != nil {
		return err
	}
	if _, ok := s.Payments[p.ID]; !ok {
		return bookings.ErrPaymentNotFound
	}
	if err := s.checkUnique(p); err != nil {
		return err
	}
	s.Payments[p.ID] = *p
	return nil
}

// checkUnique mirrors the unique indexes on payments.
func (s *Store) checkUnique(p *bookings.Payment) error {
	same := func(a, b *string) bool { return a != nil && b != nil && *a == *b }
	for id, other := range s.Payments {
		if id == p.ID {
			continue
		}
		if same(p.Reference, other.Reference) || same(p.TransactionID, other.TransactionID) ||
			same(p.IdempotencyKey, other.IdempotencyKey) {
			return ErrDuplicatePayment
		}
	}
	return nil
}

func (s *Store) CreateCancellation(_ context.Context, c *bookings.Cancellation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("CreateCancellation"); err != nil {
		return err
	}
	c.ID = s.id()
	c.CreatedAt = s.Now()
	s.Cancellations = append(s.Cancellations, *c)
	return nil
}

func (s *Store) filter(match func(bookings.Booking) bool) []bookings.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []bookings.Booking
	for _, b := range s.Bookings {
		if match(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

// ---- notifications.Repository ----

// Inbox exposes the store's notification table as a notifications.Repository.
func (s *Store) Inbox() notifications.Repository {
	return inbox{s: s}
}

type inbox struct {
	s *Store
}

func (i inbox) Create(_ context.Context, n *notifications.Notification) error {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()
	if err := i.s.fail("CreateNotification"); err != nil {
		return err
	}
	n.ID = i.s.id()
	n.CreatedAt = i.s.Now()
	i.s.Notifications = append(i.s.Notifications, *n)
	return nil
}

func (i inbox) ListByUser(_ context.Context, userID int64, unreadOnly bool, limit int) ([]notifications.Notification, error) {
	var out []notifications.Notification
	for _, n := range i.s.NotificationsFor(userID) {
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (i inbox) CountUnread(ctx context.Context, userID int64) (int64, error) {
	list, _ := i.ListByUser(ctx, userID, true, 0)
	return int64(len(list)), nil
}

func (i inbox) MarkRead(_ context.Context, userID, id int64) error {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()
	for k := range i.s.Notifications {
		if i.s.Notifications[k].ID == id && i.s.Notifications[k].UserID == userID {
			i.s.Notifications[k].IsRead = true
			return nil
		}
	}
	return notifications.ErrNotificationNotFound
}

// ---- lookups ----

// TurfLookup serves the store's turf table to services.
func (s *Store) TurfLookup() bookings.TurfLookup {
	return turfLookup{s: s}
}

type turfLookup struct {
	s *Store
}

func (l turfLookup) GetByID(_ context.Context, id int64) (*turfs.Turf, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	t, ok := l.s.Turfs[id]
	if !ok {
		return nil, turfs.ErrTurfNotFound
	}
	return &t, nil
}

// Directory is a fixed user table for notifications.Mailer.
type Directory map[int64]users.User

func (d Directory) GetUser(_ context.Context, id int64) (*users.User, error) {
	u, ok := d[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return &u, nil
}

// NewMailer returns a mailer over d whose sent mail is captured by the
// returned sender.
func NewMailer(d Directory) (*notifications.Mailer, *notifications.MockEmailSender) {
	sender := notifications.NewMockEmailSender()
	return notifications.NewMailer(d, notifications.NewDirectOutbox(sender, notifications.RetryPolicy{})), sender
}

// ---- cancellation audit reads ----

func (s *Store) GetCancellationByBookingID(_ context.Context, bookingID int64) (*bookings.Cancellation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.Cancellations {
		if c.BookingID == bookingID {
			c := c
			return &c, nil
		}
	}
	return nil, bookings.ErrCancellationNotFound
}

func (s *Store) ListCancellationsForOwner(_ context.Context, ownerID int64, limit int) ([]bookings.Cancellation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []bookings.Cancellation
	for i := len(s.Cancellations) - 1; i >= 0; i-- {
		c := s.Cancellations[i]
		b, ok := s.Bookings[c.BookingID]
		if !ok || s.Turfs[b.TurfID].OwnerID != ownerID {
			continue
		}
		out = append(out, c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
