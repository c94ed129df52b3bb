// Package ir provides the value types shared by every scriptrunner package.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - SystemValue is a closed set: String, Bool, Int, Float
//   - Equality and ordering exist only between values of the same kind
//   - Strings are NFC normalized on construction so that equality is
//     not fooled by differing Unicode compositions
//   - Values are immutable once a provider has produced them
package ir
