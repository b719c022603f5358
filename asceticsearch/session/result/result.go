package result

func NewResult(rowsAffected int64) ResultImp {
	return ResultImp{rowsAffected}
}

// ResultImp is the outcome of a statement executed by a driver that reports only
// the affected row count.
type ResultImp struct {
	rowsAffected int64
}

func (r ResultImp) RowsAffected() (int64, error) {
	return r.rowsAffected, nil
}
