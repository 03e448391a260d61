package txbuilder

import "errors"

var (
	// ErrInsufficientFunds 可用输出总额不足以覆盖目标金额
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrNegativeChange 输入总额小于 amount + fees
	ErrNegativeChange = errors.New("negative change")
	// ErrInvalidAmount 金额或手续费为负
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidOutputs 收款方输出为空或无法按金额分配
	ErrInvalidOutputs = errors.New("invalid outputs")
	// ErrInvalidUTXO 输入的 txid 或脚本不可用
	ErrInvalidUTXO = errors.New("invalid utxo")
	// ErrSigning 输入签名失败
	ErrSigning = errors.New("signing failed")
)
