/*
Package dump provides I/O operations for collected states of the share token
and the Vault contracts.

A dump holds contract states along with their storage pulled at a particular
height. It can be audited offline: storage items are decoded back into the
Vault counters and share balances and checked for consistency.

Dumps are stored in the file system using human-readable encoding.
*/
package dump
