package field_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/mailscrub/message"
	"github.com/zostay/mailscrub/message/header"
	"github.com/zostay/mailscrub/message/header/field"
)

const emailMsg = `Delivered-To: meredith@example.com
Received: by 7.4.9.6 with SMTP id qwerqwerqwerasd;
        Thu, 15 Jan 2015 18:41:28 -0800 (PST)
X-Received: by 6.3.7.4 with SMTP id qwerqwerqwerasd.5.3;
        Thu, 15 Jan 2015 18:41:27 -0800 (PST)
Return-Path: <bounce-bc.us6_4.2-meredith=example.com@mail3.example.org>
Received: from mail3.example.org (mail3.example.org. [5.8.5.3])
        by mx.example.org with ESMTP id qwerqwerqwerqwer.1.2.0.3.1.2.1
        for <meredith@example.com>;
        Thu, 15 Jan 2015 18:41:27 -0800 (PST)
Received-SPF: pass (example.org: domain of bounce-bc.us6_4.2-meredith=example.com@mail3.example.org designates 5.8.5.3 as permitted sender) client-ip=5.8.5.3;
Authentication-Results: mx.example.org;
       spf=pass (example.org: domain of bounce-bc.us6_4.2-meredith=example.com@mail3.example.org designates 5.8.5.3 as permitted sender) smtp.mail=bounce-bc.us6_4.2-meredith=example.com@mail3.example.org;
       dkim=pass header.i=@mail3.example.org
DKIM-Signature: v=1; a=rsa-sha1; c=relaxed/relaxed; s=m2; d=mail3.example.org;
 h=From:Subject:Reply-To:To:Date:Message-ID:List-ID:List-Unsubscribe:Sender:Content-Type:MIME-Version; i=newsletter=3Dexample.com@mail3.example.org;
 bh=qwerqwerqwerqwerqwerqwerqwer;
 b=qwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwer
   qwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwer
   qwerqwerqwerqwerqwer
DomainKey-Signature: a=rsa-sha1; c=nofws; q=dns; s=m2; d=mail3.example.org;
 b=qwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwer
   qwerasfdqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwer
   qwerqwerqwerqwerqwer;
Received: from (127.0.0.1) by mail3.example.org id qwerqwerqwer for <meredith@example.com>; Fri, 16 Jan 2015 02:41:24 +0000 (envelope-from <bounce-bc.us6_4.2-meredith=example.com@mail3.example.org>)
Subject: =?utf-8?Q?Renderer=20Beyond=20The=20Frames=2C=20Profiling=20Charts=2C=20New=20Reader=20Forums=20and=20tips=21?=
From: =?utf-8?Q?Updates?= <newsletter@example.com>
Reply-To: =?utf-8?Q?Updates?= <newsletter@example.com>
To: <meredith@example.com>
Date: Fri, 16 Jan 2015 02:41:24 +0000
Message-ID: <qwerqwerqwerqwerqwerqwerqwerqwerasd.2@mail3.example.org>
X-Mailer: Broadcast Mailer - **qwerqwerqwerqwerqwerasd**
X-Campaign: broadcastqwerqwerqwerqwerqwerqwera.qwerqweras
X-campaignid: broadcastasfdqwerqwerqwerqwerqwera.qwerqweras
X-Report-Abuse: Kindly report abuse for this campaign here: http://www.example.com/abuse/abuse.phtml?u=qwerqwerqwerqwerqwerqwera&id=qwerqweras&e=qwerqweras
X-BC-User: qwerqwerqwerqwerqwerqwera
X-Feedback-ID: 4:4.2:us6:bc
List-ID: qwerqwerqwerqwerqwerqwerasd list <qwerqwerqwerqwerqwerqwera.7.list-id.example.com>
X-Accounttype: ff
List-Unsubscribe: <mailto:unsubscribe-qwerqwerqwerqwerqwerqwera-qwerqweras-qwerqweras@mailin1.example.com?subject=unsubscribe>, <http://example.us6.example.com/unsubscribe?u=qwerqwerqwerqwerqwerqwera&id=qwerqweras&e=qwerqweras&c=qwerqweras>
Sender: "Updates" <newsletter=example.com@mail3.example.org>
x-bcda: FALSE
Content-Type: multipart/alternative; boundary="_----------=_BCPart_433295335"
MIME-Version: 1.0
Keywords:

A multi-part message follows in MIME format

--_----------=_BCPart_433295335
Content-Type: text/plain; charset="utf-8"; format="fixed"
Content-Transfer-Encoding: quoted-printable

Howdy.
--_----------=_BCPart_433295335--
`

const emailMsgUnfolded = `Delivered-To: meredith@example.com
Received: by 7.4.9.6 with SMTP id qwerqwerqwerasd;        Thu, 15 Jan 2015 18:41:28 -0800 (PST)
X-Received: by 6.3.7.4 with SMTP id qwerqwerqwerasd.5.3;        Thu, 15 Jan 2015 18:41:27 -0800 (PST)
Return-Path: <bounce-bc.us6_4.2-meredith=example.com@mail3.example.org>
Received: from mail3.example.org (mail3.example.org. [5.8.5.3])        by mx.example.org with ESMTP id qwerqwerqwerqwer.1.2.0.3.1.2.1        for <meredith@example.com>;        Thu, 15 Jan 2015 18:41:27 -0800 (PST)
Received-SPF: pass (example.org: domain of bounce-bc.us6_4.2-meredith=example.com@mail3.example.org designates 5.8.5.3 as permitted sender) client-ip=5.8.5.3;
Authentication-Results: mx.example.org;       spf=pass (example.org: domain of bounce-bc.us6_4.2-meredith=example.com@mail3.example.org designates 5.8.5.3 as permitted sender) smtp.mail=bounce-bc.us6_4.2-meredith=example.com@mail3.example.org;       dkim=pass header.i=@mail3.example.org
DKIM-Signature: v=1; a=rsa-sha1; c=relaxed/relaxed; s=m2; d=mail3.example.org; h=From:Subject:Reply-To:To:Date:Message-ID:List-ID:List-Unsubscribe:Sender:Content-Type:MIME-Version; i=newsletter=3Dexample.com@mail3.example.org; bh=qwerqwerqwerqwerqwerqwerqwer; b=qwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwer   qwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwer   qwerqwerqwerqwerqwer
DomainKey-Signature: a=rsa-sha1; c=nofws; q=dns; s=m2; d=mail3.example.org; b=qwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwer   qwerasfdqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwer   qwerqwerqwerqwerqwer;
Received: from (127.0.0.1) by mail3.example.org id qwerqwerqwer for <meredith@example.com>; Fri, 16 Jan 2015 02:41:24 +0000 (envelope-from <bounce-bc.us6_4.2-meredith=example.com@mail3.example.org>)
Subject: Renderer Beyond The Frames, Profiling Charts, New Reader Forums and tips!
From: Updates <newsletter@example.com>
Reply-To: Updates <newsletter@example.com>
To: <meredith@example.com>
Date: Fri, 16 Jan 2015 02:41:24 +0000
Message-ID: <qwerqwerqwerqwerqwerqwerqwerqwerasd.2@mail3.example.org>
X-Mailer: Broadcast Mailer - **qwerqwerqwerqwerqwerasd**
X-Campaign: broadcastqwerqwerqwerqwerqwerqwera.qwerqweras
X-campaignid: broadcastasfdqwerqwerqwerqwerqwera.qwerqweras
X-Report-Abuse: Kindly report abuse for this campaign here: http://www.example.com/abuse/abuse.phtml?u=qwerqwerqwerqwerqwerqwera&id=qwerqweras&e=qwerqweras
X-BC-User: qwerqwerqwerqwerqwerqwera
X-Feedback-ID: 4:4.2:us6:bc
List-ID: qwerqwerqwerqwerqwerqwerasd list <qwerqwerqwerqwerqwerqwera.7.list-id.example.com>
X-Accounttype: ff
List-Unsubscribe: <mailto:unsubscribe-qwerqwerqwerqwerqwerqwera-qwerqweras-qwerqweras@mailin1.example.com?subject=unsubscribe>, <http://example.us6.example.com/unsubscribe?u=qwerqwerqwerqwerqwerqwera&id=qwerqweras&e=qwerqweras&c=qwerqweras>
Sender: "Updates" <newsletter=example.com@mail3.example.org>
x-bcda: FALSE
Content-Type: multipart/alternative; boundary="_----------=_BCPart_433295335"
MIME-Version: 1.0
Keywords: 

A multi-part message follows in MIME format

--_----------=_BCPart_433295335
Content-Type: text/plain; charset="utf-8"; format="fixed"
Content-Transfer-Encoding: quoted-printable

Howdy.
--_----------=_BCPart_433295335--
`

const emailMsgFolded = `Delivered-To: meredith@example.com
Received: by 7.4.9.6 with SMTP id qwerqwerqwerasd;        Thu, 15 Jan 2015
 18:41:28 -0800 (PST)
X-Received: by 6.3.7.4 with SMTP id qwerqwerqwerasd.5.3;        Thu, 15 Jan
 2015 18:41:27 -0800 (PST)
Return-Path: <bounce-bc.us6_4.2-meredith=example.com@mail3.example.org>
Received: from mail3.example.org (mail3.example.org. [5.8.5.3])        by
 mx.example.org with ESMTP id qwerqwerqwerqwer.1.2.0.3.1.2.1        for
 <meredith@example.com>;        Thu, 15 Jan 2015 18:41:27 -0800 (PST)
Received-SPF: pass (example.org: domain of
 bounce-bc.us6_4.2-meredith=example.com@mail3.example.org designates 5.8.5.3
 as permitted sender) client-ip=5.8.5.3;
Authentication-Results: mx.example.org;       spf=pass (example.org: domain
 of bounce-bc.us6_4.2-meredith=example.com@mail3.example.org designates
 5.8.5.3 as permitted sender)
 smtp.mail=bounce-bc.us6_4.2-meredith=example.com@mail3.example.org;      
 dkim=pass header.i=@mail3.example.org
DKIM-Signature: v=1; a=rsa-sha1; c=relaxed/relaxed; s=m2;
 d=mail3.example.org;
 h=From:Subject:Reply-To:To:Date:Message-ID:List-ID:List-Unsubscribe:Sender:Content-Type:MIME-Version;
 i=newsletter=3Dexample.com@mail3.example.org;
 bh=qwerqwerqwerqwerqwerqwerqwer;
 b=qwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwer
 qwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwer 
 qwerqwerqwerqwerqwer
DomainKey-Signature: a=rsa-sha1; c=nofws; q=dns; s=m2; d=mail3.example.org;
 b=qwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwer
 qwerasfdqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwerqwer 
 qwerqwerqwerqwerqwer;
Received: from (127.0.0.1) by mail3.example.org id qwerqwerqwer for
 <meredith@example.com>; Fri, 16 Jan 2015 02:41:24 +0000 (envelope-from
 <bounce-bc.us6_4.2-meredith=example.com@mail3.example.org>)
Subject: Renderer Beyond The Frames, Profiling Charts, New Reader Forums and
 tips!
From: Updates <newsletter@example.com>
Reply-To: Updates <newsletter@example.com>
To: <meredith@example.com>
Date: Fri, 16 Jan 2015 02:41:24 +0000
Message-ID: <qwerqwerqwerqwerqwerqwerqwerqwerasd.2@mail3.example.org>
X-Mailer: Broadcast Mailer - **qwerqwerqwerqwerqwerasd**
X-Campaign: broadcastqwerqwerqwerqwerqwerqwera.qwerqweras
X-campaignid: broadcastasfdqwerqwerqwerqwerqwera.qwerqweras
X-Report-Abuse: Kindly report abuse for this campaign here:
 http://www.example.com/abuse/abuse.phtml?u=qwerqwerqwerqwerqwerqwera&id=qwerqweras&e=qwerqweras
X-BC-User: qwerqwerqwerqwerqwerqwera
X-Feedback-ID: 4:4.2:us6:bc
List-ID: qwerqwerqwerqwerqwerqwerasd list
 <qwerqwerqwerqwerqwerqwera.7.list-id.example.com>
X-Accounttype: ff
List-Unsubscribe: <mailto:unsubscribe-qwerqwerqwerqwerqwerqwera-qwerqweras-qwerqweras@mailin1.example.com?subject=unsubscribe>,
 <http://example.us6.example.com/unsubscribe?u=qwerqwerqwerqwerqwerqwera&id=qwerqweras&e=qwerqweras&c=qwerqweras>
Sender: "Updates" <newsletter=example.com@mail3.example.org>
x-bcda: FALSE
Content-Type: multipart/alternative; boundary="_----------=_BCPart_433295335"
MIME-Version: 1.0
Keywords: 

A multi-part message follows in MIME format

--_----------=_BCPart_433295335
Content-Type: text/plain; charset="utf-8"; format="fixed"
Content-Transfer-Encoding: quoted-printable

Howdy.
--_----------=_BCPart_433295335--
`

func stripRawFields(hd *header.Header) {
	for _, fld := range hd.ListFields() {
		fld.Raw = nil
	}
}

func TestMessageFoldIntegration(t *testing.T) {
	t.Parallel()

	msg, err := message.Parse(strings.NewReader(emailMsg), message.WithoutMultipart())
	assert.NoError(t, err)
	require.NotNil(t, msg)

	// raw bytes suppress folding, so drop them to exercise it
	stripRawFields(msg.GetHeader())

	msg.GetHeader().SetFoldEncoding(field.DefaultFoldEncoding)

	assert.Equal(t, len(msg.GetHeader().ListFields()), 30)

	from, err := msg.GetHeader().Get(header.From)
	assert.NoError(t, err)
	assert.Equal(t, "Updates <newsletter@example.com>", from)

	out := &bytes.Buffer{}
	_, _ = msg.WriteTo(out)
	assert.Equal(t, emailMsgFolded, out.String())
}

func TestMessageDoNotFoldEncodingIntegration(t *testing.T) {
	t.Parallel()

	msg, err := message.Parse(strings.NewReader(emailMsg), message.WithoutMultipart())
	assert.NoError(t, err)
	require.NotNil(t, msg)

	// raw bytes suppress folding; drop them so the unfolded form is written
	stripRawFields(msg.GetHeader())

	assert.Equal(t, len(msg.GetHeader().ListFields()), 30)

	from, err := msg.GetHeader().Get(header.From)
	assert.NoError(t, err)
	assert.Equal(t, "Updates <newsletter@example.com>", from)

	out := &bytes.Buffer{}
	_, _ = msg.WriteTo(out)
	assert.Equal(t, emailMsgUnfolded, out.String())
}

func TestNewFoldEncoding(t *testing.T) {
	t.Parallel()

	_, err := field.NewFoldEncoding("", 0, 0)
	assert.ErrorIs(t, err, field.ErrFoldIndentTooShort)

	_, err = field.NewFoldEncoding(" x", 0, 0)
	assert.ErrorIs(t, err, field.ErrFoldIndentSpace)

	_, err = field.NewFoldEncoding("     ", 0, 0)
	assert.ErrorIs(t, err, field.ErrFoldIndentTooLong)

	_, err = field.NewFoldEncoding(field.DefaultFoldIndent, field.DoNotFold, 1000)
	assert.ErrorIs(t, err, field.ErrDoNotFold)

	_, err = field.NewFoldEncoding(field.DefaultFoldIndent, 80, field.DoNotFold)
	assert.ErrorIs(t, err, field.ErrDoNotFold)

	fe, err := field.NewFoldEncoding(field.DefaultFoldIndent, field.DoNotFold, field.DoNotFold)
	assert.NoError(t, err)
	assert.NotNil(t, fe)

	fe, err = field.NewFoldEncoding("\t\t", field.DefaultPreferredFoldLength, field.DefaultForcedFoldLength)
	assert.NoError(t, err)
	assert.NotNil(t, fe)

	_, err = field.NewFoldEncoding(field.DefaultFoldIndent, 1000, 80)
	assert.ErrorIs(t, err, field.ErrFoldLengthTooLong)

	_, err = field.NewFoldEncoding(field.DefaultFoldIndent, 2, 1000)
	assert.Error(t, err, field.ErrFoldLengthTooShort)

	// absurdly narrow widths are permitted; there is no sensible minimum to
	// enforce
	fe, err = field.NewFoldEncoding("\t", 3, 3)
	assert.NoError(t, err)
	assert.NotNil(t, fe)
}

func TestFoldEncoding_Unfold(t *testing.T) {
	t.Parallel()

	fe := field.DefaultFoldEncoding

	flat := fe.Unfold([]byte("w\n x\n\ty\n z\n"))
	assert.Equal(t, []byte("w x\ty z"), flat)
}

func TestFoldEncoding_Fold(t *testing.T) {
	t.Parallel()

	fe, err := field.NewFoldEncoding(field.DefaultFoldIndent, 10, 20)
	assert.NoError(t, err)

	// short enough to pass through untouched
	buf := &bytes.Buffer{}
	n, err := fe.Fold(buf, []byte("w x y z"), field.Break("\n"))
	assert.Equal(t, int64(8), n)
	assert.NoError(t, err)
	assert.Equal(t, "w x y z\n", buf.String())

	// breaks at the space before the preferred width
	buf.Truncate(0)
	n, err = fe.Fold(buf, []byte("wwwww xxxxx"), field.Break("\n"))
	assert.Equal(t, int64(13), n)
	assert.NoError(t, err)
	assert.Equal(t, "wwwww\n xxxxx\n", buf.String())

	// no space anywhere, so it splits at the forced width
	buf.Truncate(0)
	n, err = fe.Fold(buf, []byte("wwwwwxxxxxyyyyyzzzzzqqqqqrrrrr"), field.Break("\n"))
	assert.Equal(t, int64(35), n)
	assert.NoError(t, err)
	assert.Equal(t, "wwwwwxxx\n xxyyyyyz\n zzzzqqqqqrrrrr\n", buf.String())
}
