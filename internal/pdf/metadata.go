package pdf

// Metadata holds the standard document information fields. A nil field
// was not present in the source document.
type Metadata struct {
	Title   *string
	Author  *string
	Subject *string
	Creator *string
}

// Metadata reads the trailer's /Info dictionary. Fields absent from the
// dictionary stay nil — never defaulted to an empty string. For
// encrypted documents the string values are ciphertext, so they are
// withheld rather than returned as garbage.
func (d *Document) Metadata() Metadata {
	var m Metadata
	if d.encrypted {
		return m
	}
	info, ok := toDict(d.Resolve(d.trailer["Info"]))
	if !ok {
		return m
	}
	m.Title = d.infoString(info, "Title")
	m.Author = d.infoString(info, "Author")
	m.Subject = d.infoString(info, "Subject")
	m.Creator = d.infoString(info, "Creator")
	return m
}

func (d *Document) infoString(info Dict, key Name) *string {
	obj, ok := info[key]
	if !ok {
		return nil
	}
	s, ok := d.Resolve(obj).(String_)
	if !ok {
		return nil
	}
	v := DecodeTextString(s)
	return &v
}
