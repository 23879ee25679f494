package memory

// transactionView exposes a read-only view of a state to rules and readers.
type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

func (v transactionView) ListProducts() []Product {
	out := make([]Product, 0, len(v.state.products))
	for _, p := range v.state.products {
		out = append(out, cloneProduct(p))
	}
	return out
}

func (v transactionView) ListTechnicians() []Technician {
	out := make([]Technician, len(v.state.technicians))
	copy(out, v.state.technicians)
	return out
}

func (v transactionView) ListMovements() []Movement {
	out := make([]Movement, 0, len(v.state.movements))
	for _, m := range v.state.movements {
		out = append(out, cloneMovement(m))
	}
	return out
}

func (v transactionView) ListToolLoans() []ToolLoan {
	out := make([]ToolLoan, 0, len(v.state.loans))
	for _, l := range v.state.loans {
		out = append(out, cloneToolLoan(l))
	}
	return out
}

func (v transactionView) FindProduct(id string) (Product, bool) {
	i := indexOf(v.state.products, id, productID)
	if i < 0 {
		return Product{}, false
	}
	return cloneProduct(v.state.products[i]), true
}

func (v transactionView) FindTechnician(id string) (Technician, bool) {
	i := indexOf(v.state.technicians, id, technicianID)
	if i < 0 {
		return Technician{}, false
	}
	return v.state.technicians[i], true
}

func (v transactionView) FindToolLoan(id string) (ToolLoan, bool) {
	i := indexOf(v.state.loans, id, toolLoanID)
	if i < 0 {
		return ToolLoan{}, false
	}
	return cloneToolLoan(v.state.loans[i]), true
}
