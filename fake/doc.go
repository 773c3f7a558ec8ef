// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides scriptable Selector and Socket doubles with call accounting.
package fake
