/*
Package sharetoken implements the share token contract: the ledger of Vault
shares.

The contract keeps per-account share balances, spending allowances and the
total supply. Only the minter (the Vault contract) can create or destroy
arbitrary balances; holders can transfer their shares, burn them, or delegate
spending to another account with an allowance. Total supply always equals the
sum of all balances.

The token is not declared NEP-17: transfers fail instead of returning false and
zero-amount transfers are rejected. BalanceOf, Decimals, Symbol and TotalSupply
still follow NEP-17 signatures so that generic token readers work.

# Contract notifications

Mint notification. It is produced when the minter creates shares. Balance is
the account balance after the operation.

	Mint:
	  - name: to
	    type: Hash160
	  - name: amount
	    type: Integer
	  - name: balance
	    type: Integer

Burn notification. It is produced when shares are destroyed by the minter, the
holder or a spender.

	Burn:
	  - name: from
	    type: Hash160
	  - name: amount
	    type: Integer
	  - name: balance
	    type: Integer

Transfer notification. It is produced by Transfer and TransferFrom.

	Transfer:
	  - name: from
	    type: Hash160
	  - name: to
	    type: Hash160
	  - name: amount
	    type: Integer

Approve notification. It is produced when an allowance is set or removed.

	Approve:
	  - name: from
	    type: Hash160
	  - name: spender
	    type: Hash160
	  - name: amount
	    type: Integer
	  - name: expiration
	    type: Integer
*/
package sharetoken
