package shef

// RecordSink receives one decoded OutputRecord at a time. The parser is
// oblivious to how records are consumed -- the database/HEC-DSS/CWMS
// loaders and exporters named in §1 are opaque callers of this interface,
// not components of this package (§9, REDESIGN FLAGS: "the parser exposes
// an interface accepting a record sink").
type RecordSink func(OutputRecord)
