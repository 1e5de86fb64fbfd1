/*
Package vault implements the share vault contract.

The Vault keeps custody of a NEP-17 principal asset and issues shares of the
share token contract against it. Every deposit mints shares at the current
exchange rate and every withdrawal burns them and returns the principal they
are worth:

	exchangeRate = (totalDeposits + yieldAccrued) * Precision / totalSupply

or Precision while no shares exist. All conversions round down, so a deposit
followed by a full withdrawal never returns more than was deposited.

Yield is credited by the administrator with AddYield, which models the net
result of an external strategy (deposit, withdraw, balance, harvest) without
calling one. Withdrawals reduce deposits and yield proportionally.

Deposit and Withdraw take a reentrancy lock for the duration of the call: a
nested Deposit or Withdraw made by the principal asset or the share token
while the lock is held fails, and so does the outer call. Read-only methods
never take the lock.

The principal asset is pulled from the depositor with a NEP-17 transfer made
by the Vault itself, so the depositor's witness must be valid in the Vault
context (CalledByEntry is not enough, use CustomContracts or Global scope).

# Contract notifications

Deposit notification. It is produced on every successful deposit,
prevTotalDeposits and totalDeposits are the principal deposited before and
after the operation.

	Deposit:
	  - name: user
	    type: Hash160
	  - name: amount
	    type: Integer
	  - name: shares
	    type: Integer
	  - name: prevTotalDeposits
	    type: Integer
	  - name: totalDeposits
	    type: Integer

Withdraw notification. It is produced on every successful withdrawal,
prevTotalAssets and totalAssets are deposits plus yield before and after the
operation.

	Withdraw:
	  - name: user
	    type: Hash160
	  - name: shares
	    type: Integer
	  - name: amount
	    type: Integer
	  - name: prevTotalAssets
	    type: Integer
	  - name: totalAssets
	    type: Integer

YieldAdded notification.

	YieldAdded:
	  - name: amount
	    type: Integer
	  - name: yieldAccrued
	    type: Integer

Paused and Unpaused notifications.

	Paused:
	  - name: admin
	    type: Hash160
	Unpaused:
	  - name: admin
	    type: Hash160

AdminTransferred notification.

	AdminTransferred:
	  - name: oldAdmin
	    type: Hash160
	  - name: newAdmin
	    type: Hash160
*/
package vault
