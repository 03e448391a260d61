package message

// Output 收款输出：金额（聪）与锁定脚本
type Output struct {
	Amount int64  `json:"amount"`
	Script []byte `json:"script"`
}

// Common 所有消息共有的字段
type Common struct {
	Time      int64  // 创建时间（Unix 秒）
	PayerData string // 付款方关联数据，JSON {"nid": ...}
	PayeeData string // 收款方关联数据，对付款方不透明
	Memo      string
}

// Details 消息载荷。只有本包定义的六种类型实现该接口
type Details interface {
	Type() Type
	Base() *Common
	sealed()
}

// RequestDetails 付款方发起议价
type RequestDetails struct {
	Common
	Network    string
	Expires    int64
	BargainURI string // 付款方接收消息的地址，可为空
}

// RequestAckDetails 收款方确认并给出报价
type RequestAckDetails struct {
	Common
	Network    string
	Expires    int64
	BargainURI string // 付款方后续消息的目标地址
	Amount     int64
	Outputs    []Output
}

// ProposalDetails 付款方出价，附带已签名的支付交易
type ProposalDetails struct {
	Common
	Transactions [][]byte
	RefundTo     []Output
	Amount       int64
	Fees         int64
	Redeemable   bool
}

// ProposalAckDetails 收款方还价
type ProposalAckDetails struct {
	Common
	Amount  int64
	Outputs []Output
}

// CompletionDetails 收款方接受出价
type CompletionDetails struct {
	Common
}

// CancellationDetails 任一方终止议价
type CancellationDetails struct {
	Common
}

func (d *RequestDetails) Type() Type      { return TypeRequest }
func (d *RequestAckDetails) Type() Type   { return TypeRequestAck }
func (d *ProposalDetails) Type() Type     { return TypeProposal }
func (d *ProposalAckDetails) Type() Type  { return TypeProposalAck }
func (d *CompletionDetails) Type() Type   { return TypeCompletion }
func (d *CancellationDetails) Type() Type { return TypeCancellation }

func (d *RequestDetails) Base() *Common      { return &d.Common }
func (d *RequestAckDetails) Base() *Common   { return &d.Common }
func (d *ProposalDetails) Base() *Common     { return &d.Common }
func (d *ProposalAckDetails) Base() *Common  { return &d.Common }
func (d *CompletionDetails) Base() *Common   { return &d.Common }
func (d *CancellationDetails) Base() *Common { return &d.Common }

func (*RequestDetails) sealed()      {}
func (*RequestAckDetails) sealed()   {}
func (*ProposalDetails) sealed()     {}
func (*ProposalAckDetails) sealed()  {}
func (*CompletionDetails) sealed()   {}
func (*CancellationDetails) sealed() {}

// newDetails 根据类型创建空载荷
func newDetails(t Type) (Details, error) {
	switch t {
	case TypeRequest:
		return &RequestDetails{}, nil
	case TypeRequestAck:
		return &RequestAckDetails{}, nil
	case TypeProposal:
		return &ProposalDetails{}, nil
	case TypeProposalAck:
		return &ProposalAckDetails{}, nil
	case TypeCompletion:
		return &CompletionDetails{}, nil
	case TypeCancellation:
		return &CancellationDetails{}, nil
	default:
		return nil, ErrUnknownType
	}
}
