// Package driver stores the drivers of each fleet owner and answers the
// counts the subscription package enforces plan limits with.
package driver
