// Package model defines the boundary types of the tool: the structured error
// every component reports, and the on-disk key file document together with
// its styled JSON rendering.
package model
