package domain

import "fmt"

// Describe builds the default journal description for a record when the
// caller supplied none. amountAbs is the non-negative magnitude of the delta.
func Describe(kind TransactionKind, amountAbs int64, flow MoneyFlow, relatedName string) string {
	switch kind {
	case KindSet:
		return fmt.Sprintf("balance set to %d", amountAbs)
	case KindAdd:
		if flow == FlowDebit {
			return fmt.Sprintf("deducted %d", amountAbs)
		}
		return fmt.Sprintf("received %d", amountAbs)
	case KindReduce:
		return fmt.Sprintf("spent %d", amountAbs)
	case KindTransfer:
		if relatedName != "" {
			if flow == FlowCredit {
				return fmt.Sprintf("received %d from %s", amountAbs, relatedName)
			}
			return fmt.Sprintf("sent %d to %s", amountAbs, relatedName)
		}
		return fmt.Sprintf("transferred %d", amountAbs)
	case KindInitial:
		return fmt.Sprintf("starting balance %d", amountAbs)
	}
	return fmt.Sprintf("transaction of %d", amountAbs)
}

// DescribeWithOperator is Describe plus attribution of the actor that
// requested the mutation, e.g. `admin[Steve] set balance to 500`.
func DescribeWithOperator(
	kind TransactionKind,
	amountAbs int64,
	flow MoneyFlow,
	operator OperatorKind,
	operatorName string,
	relatedName string,
) string {
	actor := string(operator)
	if operatorName != "" {
		actor = fmt.Sprintf("%s[%s]", operator, operatorName)
	}

	switch kind {
	case KindSet:
		return fmt.Sprintf("%s set balance to %d", actor, amountAbs)
	case KindAdd:
		if flow == FlowDebit {
			return fmt.Sprintf("deducted %d by %s", amountAbs, actor)
		}
		return fmt.Sprintf("received %d from %s", amountAbs, actor)
	case KindReduce:
		return fmt.Sprintf("spent %d at %s", amountAbs, actor)
	case KindTransfer, KindInitial:
		// Transfers and initial grants always describe the counterparty,
		// not the operator.
		return Describe(kind, amountAbs, flow, relatedName)
	}
	return fmt.Sprintf("transaction of %d by %s", amountAbs, actor)
}
