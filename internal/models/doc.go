// Package models defines the documents of the tour-booking ledger.
//
// # Documents
//
//   - Tour: a bus trip with its fee schedule, bus configuration, cost
//     structure and the partner agencies (embedded) that book seats on it.
//   - PersonalData: one record per tour and host, holding the host's own
//     direct bookings. Keyed by PersonalKey(tourID, userID).
//   - Guest: a booking entry, owned by an agency or by a personal record.
//
// # Derived fields
//
// Tour.TotalGuests and the seat counts in BusConfig (RegularSeats,
// Discount1Seats, Discount2Seats) are caches maintained by the seat
// recompute. They are never authored directly and may lag the guest lists
// between writes.
//
// # Field names
//
// JSON and BSON tags use the same camelCase names, so a dotted path such as
// "busConfig.regularSeats" addresses the same field in every storage backend.
package models
