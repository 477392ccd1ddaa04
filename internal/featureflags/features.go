package featureflags

var (
	// SaveRawSample uploads the analysed bytes next to the result record when
	// a results bucket is configured.
	SaveRawSample = new("SaveRawSample", false)

	// ReportByteFrequency includes the 256-entry byte frequency table in
	// reports and stored records.
	ReportByteFrequency = new("ReportByteFrequency", true)

	// ExclusiveSources serialises access to each entropy source when several
	// analyses run concurrently.
	ExclusiveSources = new("ExclusiveSources", true)

	// PubSubExtender keeps GCP pubsub messages leased while the worker samples
	// large or slow sources.
	PubSubExtender = new("PubSubExtender", true)
)
